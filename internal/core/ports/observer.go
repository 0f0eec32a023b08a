package ports

import "github.com/idealservice/waste-pickup/internal/core/domain"

// Observer is notified after every completed refresh, successful or not.
type Observer interface {
	OnRefresh(state domain.RefreshState)
}
