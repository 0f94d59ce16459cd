package repository

import (
	"context"

	"securevision/internal/domain"
)

// начальный каталог систем видеонаблюдения
var seedItems = []domain.CatalogItem{
	{
		Name:         "SecureVision Start",
		Description:  "Базовий комплект для квартири або невеликого офісу.",
		CameraCount:  2,
		CoverageArea: 50,
		Price:        150,
		Features:     []string{"2 камери FullHD", "нічна зйомка", "запис у хмару"},
	},
	{
		Name:         "SecureVision Home",
		Description:  "Комплект для приватного будинку з двором.",
		CameraCount:  4,
		CoverageArea: 150,
		Price:        350,
		Features:     []string{"4 камери FullHD", "датчики руху", "сповіщення на телефон"},
	},
	{
		Name:         "SecureVision Office",
		Description:  "Рішення для офісу або магазину середнього розміру.",
		CameraCount:  8,
		CoverageArea: 300,
		Price:        700,
		Features:     []string{"8 камер 2K", "локальний архів 30 днів", "контроль доступу"},
	},
	{
		Name:         "SecureVision Pro",
		Description:  "Професійна система для складів та виробництв.",
		CameraCount:  16,
		CoverageArea: 600,
		Price:        1500,
		Features:     []string{"16 камер 4K", "аналітика периметра", "резервне живлення"},
	},
	{
		Name:         "SecureVision Mini",
		Description:  "Одна автономна камера для під'їзду чи гаража.",
		CameraCount:  1,
		CoverageArea: 20,
		Price:        80,
		Features:     []string{"1 камера HD", "робота від акумулятора"},
	},
}

// SeedCatalog наполняет каталог начальными данными, если он пуст.
// Повторный запуск ничего не меняет.
func SeedCatalog(ctx context.Context, catalog CatalogRepository) error {
	n, err := catalog.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, it := range seedItems {
		item := it
		if err := catalog.Create(ctx, &item); err != nil {
			return err
		}
	}
	return nil
}
