package bot

import (
	"fmt"

	"securevision/internal/domain"
)

// Option кнопка в ответе; рендеринг на стороне фронтенда сообщений
type Option struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// главное меню
func mainMenu() []Option {
	return []Option{
		{Label: "Каталог", Data: "catalog"},
		{Label: "Підбір системи", Data: "search"},
		{Label: "Баланс", Data: "balance"},
		{Label: "Поповнити баланс", Data: "topup"},
		{Label: "Мої замовлення", Data: "orders"},
	}
}

func topupAmountsKb() []Option {
	return []Option{
		{Label: "Поповнити 5$", Data: "pay_5"},
		{Label: "Поповнити 10$", Data: "pay_10"},
		{Label: "Поповнити 20$", Data: "pay_20"},
	}
}

func simulatePaymentKb(payload string) []Option {
	return []Option{
		{Label: "Імітувати оплату", Data: "simulate_" + payload},
		{Label: "Скасувати", Data: "payment_cancel"},
	}
}

func confirmKb() []Option {
	return []Option{
		{Label: "Підтвердити", Data: "confirm"},
		{Label: "Скасувати", Data: "cancel"},
	}
}

func itemsKb(items []domain.CatalogItem) []Option {
	out := make([]Option, 0, len(items))
	for _, it := range items {
		out = append(out, Option{
			Label: fmt.Sprintf("Купити %s — %.0f$", it.Name, it.Price),
			Data:  fmt.Sprintf("select_%d", it.ID),
		})
	}
	return out
}
