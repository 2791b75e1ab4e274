// Package payment содержит клиент внешнего платёжного шлюза. Сервис создаёт
// payment intent и отдаёт client secret фронтенду; подтверждение карты
// выполняет браузерный SDK шлюза, внутрь этого процесса мы не заходим.
package payment

import "context"

// Intent представляет авторизацию платежа, созданную шлюзом.
type Intent struct {
	ID           string
	ClientSecret string
}

type Gateway interface {
	// CreateIntent создаёт intent на сумму в минимальных единицах валюты
	// (центы/пойша): целое, fees * 100.
	CreateIntent(ctx context.Context, amountSubunits int64, currency string) (*Intent, error)
}
