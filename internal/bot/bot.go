package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"securevision/internal/domain"
	"securevision/internal/repository"
	"securevision/internal/service"
)

// EventKind вид входящего события
type EventKind string

const (
	KindCommand  EventKind = "command"
	KindText     EventKind = "text"
	KindCallback EventKind = "callback"
)

// Event входящее событие от фронтенда сообщений
type Event struct {
	ExternalID int64     `json:"external_id"`
	Name       string    `json:"name,omitempty"`
	Kind       EventKind `json:"kind"`
	Text       string    `json:"text,omitempty"`
	Data       string    `json:"data,omitempty"`
}

// Reply ответ на событие; рендеринг текста и кнопок — на стороне фронтенда
type Reply struct {
	Text    string   `json:"text"`
	Options []Option `json:"options,omitempty"`
}

// Bot маршрутизирует события диалога: команды и нажатия кнопок разбираются
// напрямую, свободный текст — по текущему состоянию сеанса. Невалидный ввод
// никогда не роняет сеанс — пользователь получает повторный запрос.
type Bot struct {
	sessions *SessionStore
	locks    sync.Map // external id -> *sync.Mutex
	accounts *service.AccountService
	catalog  *service.CatalogService
	checkout *service.CheckoutService
	payments *service.PaymentService
}

func New(accounts *service.AccountService, catalog *service.CatalogService, checkout *service.CheckoutService, payments *service.PaymentService) *Bot {
	return &Bot{
		sessions: NewSessionStore(),
		accounts: accounts,
		catalog:  catalog,
		checkout: checkout,
		payments: payments,
	}
}

// Sessions доступ к хранилищу сеансов (нужен тестам и фронтенду)
func (b *Bot) Sessions() *SessionStore { return b.sessions }

// HandleEvent обрабатывает одно событие и возвращает ответ.
// События одного аккаунта обрабатываются строго по одному: два одновременных
// подтверждения не должны прочитать один и тот же сеанс.
// Ошибка означает отказ инфраструктуры, а не ошибку пользователя.
func (b *Bot) HandleEvent(ctx context.Context, ev Event) (Reply, error) {
	if ev.ExternalID <= 0 {
		return Reply{}, service.ErrInvalidInput
	}
	mu, _ := b.locks.LoadOrStore(ev.ExternalID, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	switch ev.Kind {
	case KindCommand:
		return b.handleCommand(ctx, ev)
	case KindCallback:
		return b.handleCallback(ctx, ev)
	default:
		return b.handleText(ctx, ev)
	}
}

func (b *Bot) handleCommand(ctx context.Context, ev Event) (Reply, error) {
	// команда верхнего уровня бросает незавершённый поток без побочных эффектов
	b.sessions.Clear(ev.ExternalID)

	switch strings.TrimSpace(ev.Text) {
	case "/start":
		if _, err := b.accounts.GetOrCreate(ctx, ev.ExternalID, ev.Name); err != nil {
			return Reply{}, err
		}
		return Reply{
			Text:    "Вітаю! Я — помічник з підбору систем відеоспостереження.\nОберіть дію:",
			Options: mainMenu(),
		}, nil
	case "/help":
		return Reply{Text: "/start — Початок\n/register — Реєстрація\n/balance — Показати баланс\n/topup — Поповнити баланс (імітація)\n/info — Інформація про бот"}, nil
	case "/register":
		a, err := b.accounts.GetOrCreate(ctx, ev.ExternalID, ev.Name)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: fmt.Sprintf("Ви зареєстровані: %s (id=%d). Баланс: %.2f$", a.Name, a.ExternalID, a.Balance)}, nil
	case "/balance":
		return b.replyBalance(ctx, ev.ExternalID)
	case "/topup":
		return Reply{Text: "Оберіть суму для поповнення:", Options: topupAmountsKb()}, nil
	case "/info":
		return Reply{Text: "Бот допомагає обрати систему відеоспостереження за базовими параметрами.\nОплата імітована.\nКоманди: /register /balance /topup /info"}, nil
	}
	return Reply{Text: "Невідома команда. Скористайтеся /help."}, nil
}

func (b *Bot) handleCallback(ctx context.Context, ev Event) (Reply, error) {
	data := strings.TrimSpace(ev.Data)
	switch {
	case data == "catalog":
		b.sessions.Clear(ev.ExternalID)
		return b.replyCatalog(ctx)
	case data == "search":
		return b.startSearch(ev.ExternalID), nil
	case data == "balance":
		b.sessions.Clear(ev.ExternalID)
		return b.replyBalance(ctx, ev.ExternalID)
	case data == "topup":
		b.sessions.Clear(ev.ExternalID)
		return Reply{Text: "Оберіть суму для поповнення:", Options: topupAmountsKb()}, nil
	case data == "orders":
		b.sessions.Clear(ev.ExternalID)
		return b.replyOrders(ctx, ev.ExternalID)
	case strings.HasPrefix(data, "pay_"):
		return b.handleSelectAmount(ev)
	case strings.HasPrefix(data, "simulate_"):
		return b.handleSimulatePayment(ctx, ev)
	case data == "payment_cancel":
		return Reply{Text: "Платіж скасовано."}, nil
	case strings.HasPrefix(data, "select_"):
		return b.handleSelectItem(ctx, ev)
	case data == "confirm":
		return b.handleConfirm(ctx, ev)
	case data == "cancel":
		b.sessions.Clear(ev.ExternalID)
		return Reply{Text: "Покупку скасовано.", Options: mainMenu()}, nil
	}
	return Reply{Text: "Невідома дія."}, nil
}

func (b *Bot) handleText(ctx context.Context, ev Event) (Reply, error) {
	text := strings.TrimSpace(ev.Text)

	// кнопки главного меню работают как команды верхнего уровня
	switch text {
	case "Каталог":
		b.sessions.Clear(ev.ExternalID)
		return b.replyCatalog(ctx)
	case "Підбір системи":
		return b.startSearch(ev.ExternalID), nil
	case "Баланс":
		b.sessions.Clear(ev.ExternalID)
		return b.replyBalance(ctx, ev.ExternalID)
	case "Поповнити баланс":
		b.sessions.Clear(ev.ExternalID)
		return Reply{Text: "Оберіть суму для поповнення:", Options: topupAmountsKb()}, nil
	case "Мої замовлення":
		b.sessions.Clear(ev.ExternalID)
		return b.replyOrders(ctx, ev.ExternalID)
	}

	sess, ok := b.sessions.Get(ev.ExternalID)
	if !ok {
		return Reply{Text: "Не розумію. Оберіть дію з меню або виконайте /help.", Options: mainMenu()}, nil
	}

	switch sess.State {
	case StateAwaitCameras:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil || n < 1 || n > 50 {
			return Reply{Text: "Введіть кількість камер цілим числом від 1 до 50."}, nil
		}
		sess.Cameras = n
		sess.State = StateAwaitArea
		b.sessions.Put(ev.ExternalID, sess)
		return Reply{Text: "Яку площу потрібно охопити, м²? (від 1 до 10000)"}, nil

	case StateAwaitArea:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil || n < 1 || n > 10000 {
			return Reply{Text: "Введіть площу цілим числом від 1 до 10000."}, nil
		}
		sess.Area = n
		sess.State = StateAwaitBudget
		b.sessions.Put(ev.ExternalID, sess)
		return Reply{Text: "Який у вас бюджет, $? (0 — без обмеження)"}, nil

	case StateAwaitBudget:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || v < 0 {
			return Reply{Text: "Введіть бюджет числом, не менше 0."}, nil
		}
		f := repository.CatalogFilter{MinCameras: sess.Cameras, MinArea: sess.Area}
		if v > 0 {
			f.MaxPrice = &v
		}
		items, err := b.catalog.Search(ctx, f)
		if err != nil {
			return Reply{}, err
		}
		b.sessions.Clear(ev.ExternalID)
		if len(items) == 0 {
			return Reply{Text: "На жаль, за вашими параметрами нічого не знайдено.", Options: mainMenu()}, nil
		}
		return Reply{Text: renderItems("Ось що вдалося підібрати:", items), Options: itemsKb(items)}, nil

	case StateAwaitPhone:
		if len(text) < 10 {
			return Reply{Text: "Телефон має містити щонайменше 10 символів."}, nil
		}
		a, err := b.accounts.GetByExternalID(ctx, ev.ExternalID)
		if errors.Is(err, service.ErrUnknownAccount) {
			b.sessions.Clear(ev.ExternalID)
			return Reply{Text: "Ви не зареєстровані. Виконайте /register"}, nil
		}
		if err != nil {
			return Reply{}, err
		}
		if err := b.accounts.SetPhone(ctx, a.ID, text); err != nil {
			return Reply{}, err
		}
		item, err := b.catalog.GetItem(ctx, sess.ItemID)
		if errors.Is(err, repository.ErrNotFound) {
			b.sessions.Clear(ev.ExternalID)
			return Reply{Text: "Цю систему не знайдено в каталозі.", Options: mainMenu()}, nil
		}
		if err != nil {
			return Reply{}, err
		}
		sess.State = StateAwaitConfirm
		b.sessions.Put(ev.ExternalID, sess)
		return Reply{Text: confirmText(item), Options: confirmKb()}, nil

	case StateAwaitConfirm:
		return Reply{Text: "Скористайтеся кнопками: Підтвердити або Скасувати.", Options: confirmKb()}, nil
	}

	return Reply{Text: "Не розумію. Оберіть дію з меню або виконайте /help.", Options: mainMenu()}, nil
}

func (b *Bot) startSearch(externalID int64) Reply {
	// новый поток вытесняет незавершённый прежний
	b.sessions.Put(externalID, Session{State: StateAwaitCameras})
	return Reply{Text: "Скільки камер потрібно? (від 1 до 50)"}
}

func (b *Bot) handleSelectAmount(ev Event) (Reply, error) {
	amount, err := strconv.ParseFloat(strings.TrimPrefix(ev.Data, "pay_"), 64)
	if err != nil || amount <= 0 {
		return Reply{Text: "Невірна сума поповнення."}, nil
	}
	payload := fmt.Sprintf("%d_%d", ev.ExternalID, int64(amount))
	return Reply{
		Text:    fmt.Sprintf("Ви обрали поповнення %.0f$.\nНатисніть нижче, щоб імітувати оплату.", amount),
		Options: simulatePaymentKb(payload),
	}, nil
}

func (b *Bot) handleSimulatePayment(ctx context.Context, ev Event) (Reply, error) {
	// payload format: "{external_id}_{amount}"
	payload := strings.TrimPrefix(ev.Data, "simulate_")
	parts := strings.SplitN(payload, "_", 2)
	if len(parts) != 2 {
		return Reply{Text: "Невірний payload платежу."}, nil
	}
	amount, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || amount <= 0 {
		return Reply{Text: "Невірний payload платежу."}, nil
	}
	// зачисляем тому, кто нажал кнопку, а не кому выписан payload
	a, err := b.payments.SimulateTopUp(ctx, ev.ExternalID, amount)
	if errors.Is(err, service.ErrUnknownAccount) {
		return Reply{Text: "Користувача не знайдено. Зробіть /register"}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("Оплата успішна! Поповнено %.0f$. Новий баланс: %.2f$", amount, a.Balance)}, nil
}

func (b *Bot) handleSelectItem(ctx context.Context, ev Event) (Reply, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(ev.Data, "select_"), 10, 64)
	if err != nil || id <= 0 {
		return Reply{Text: "Невірна позиція каталогу."}, nil
	}
	a, err := b.accounts.GetByExternalID(ctx, ev.ExternalID)
	if errors.Is(err, service.ErrUnknownAccount) {
		return Reply{Text: "Ви не зареєстровані. Виконайте /register"}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	item, err := b.catalog.GetItem(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		b.sessions.Clear(ev.ExternalID)
		return Reply{Text: "Цю систему не знайдено в каталозі.", Options: mainMenu()}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	if a.Balance < item.Price {
		b.sessions.Clear(ev.ExternalID)
		return Reply{
			Text:    fmt.Sprintf("Недостатньо коштів: потрібно %.2f$, на балансі %.2f$. Поповніть баланс.", item.Price, a.Balance),
			Options: topupAmountsKb(),
		}, nil
	}
	sess := Session{State: StateAwaitConfirm, ItemID: item.ID, Price: item.Price}
	if a.Phone == "" {
		sess.State = StateAwaitPhone
		b.sessions.Put(ev.ExternalID, sess)
		return Reply{Text: "Вкажіть контактний телефон (щонайменше 10 символів):"}, nil
	}
	b.sessions.Put(ev.ExternalID, sess)
	return Reply{Text: confirmText(item), Options: confirmKb()}, nil
}

func (b *Bot) handleConfirm(ctx context.Context, ev Event) (Reply, error) {
	sess, ok := b.sessions.Get(ev.ExternalID)
	if !ok || sess.State != StateAwaitConfirm {
		// повторное нажатие после оформления попадает сюда и ничего не списывает
		return Reply{Text: "Немає покупки, що очікує підтвердження."}, nil
	}
	// выходим из состояния подтверждения до вызова оформления
	b.sessions.Clear(ev.ExternalID)

	a, err := b.accounts.GetByExternalID(ctx, ev.ExternalID)
	if errors.Is(err, service.ErrUnknownAccount) {
		return Reply{Text: "Ви не зареєстровані. Виконайте /register"}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	o, balance, err := b.checkout.Checkout(ctx, a.ID, sess.ItemID, a.Phone)
	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		return Reply{Text: "Недостатньо коштів на балансі. Поповніть баланс і спробуйте ще раз.", Options: topupAmountsKb()}, nil
	case errors.Is(err, repository.ErrNotFound):
		return Reply{Text: "Цю систему не знайдено в каталозі.", Options: mainMenu()}, nil
	case err != nil:
		return Reply{}, err
	}
	return Reply{
		Text:    fmt.Sprintf("Замовлення %s оформлено!\nСума: %.2f$. Новий баланс: %.2f$", o.ID, o.TotalPrice, balance),
		Options: mainMenu(),
	}, nil
}

func (b *Bot) replyBalance(ctx context.Context, externalID int64) (Reply, error) {
	a, err := b.accounts.GetByExternalID(ctx, externalID)
	if errors.Is(err, service.ErrUnknownAccount) {
		return Reply{Text: "Ви не зареєстровані. Виконайте /register"}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("Ваш баланс: %.2f$", a.Balance)}, nil
}

func (b *Bot) replyCatalog(ctx context.Context) (Reply, error) {
	items, err := b.catalog.Search(ctx, repository.CatalogFilter{})
	if err != nil {
		return Reply{}, err
	}
	if len(items) == 0 {
		return Reply{Text: "Каталог порожній.", Options: mainMenu()}, nil
	}
	return Reply{Text: renderItems("Наш каталог:", items), Options: itemsKb(items)}, nil
}

func (b *Bot) replyOrders(ctx context.Context, externalID int64) (Reply, error) {
	a, err := b.accounts.GetByExternalID(ctx, externalID)
	if errors.Is(err, service.ErrUnknownAccount) {
		return Reply{Text: "Ви не зареєстровані. Виконайте /register"}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	orders, err := b.checkout.ListOrders(ctx, a.ID)
	if err != nil {
		return Reply{}, err
	}
	if len(orders) == 0 {
		return Reply{Text: "У вас ще немає замовлень.", Options: mainMenu()}, nil
	}
	var sb strings.Builder
	sb.WriteString("Ваші замовлення (нові першими):")
	for _, o := range orders {
		fmt.Fprintf(&sb, "\n%s — %.2f$ (%s)", o.ID, o.TotalPrice, o.Status)
	}
	return Reply{Text: sb.String(), Options: mainMenu()}, nil
}

func confirmText(item *domain.CatalogItem) string {
	return fmt.Sprintf("Підтвердіть покупку: %s за %.2f$.", item.Name, item.Price)
}

func renderItems(header string, items []domain.CatalogItem) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, it := range items {
		fmt.Fprintf(&sb, "\n\n%s — %.0f$\n%s\nКамер: %d, площа до %d м²", it.Name, it.Price, it.Description, it.CameraCount, it.CoverageArea)
		if len(it.Features) > 0 {
			fmt.Fprintf(&sb, "\n• %s", strings.Join(it.Features, "\n• "))
		}
	}
	return sb.String()
}
