//go:build wireinject
// +build wireinject

package stall

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	reviewdomain "github.com/pinned-app/pinned/internal/review/domain"
	reviewrepository "github.com/pinned-app/pinned/internal/review/repository"
	"github.com/pinned-app/pinned/internal/stall/delivery/http"
	"github.com/pinned-app/pinned/internal/stall/domain"
	"github.com/pinned-app/pinned/internal/stall/repository"
)

// ProvideStallRepository provides the stall repository
func ProvideStallRepository(db *gorm.DB) domain.StallRepository {
	return repository.NewGormStallRepository(db)
}

// ProvideReviewRepository provides the review repository used for
// rating aggregates on stall pages
func ProvideReviewRepository(db *gorm.DB) reviewdomain.ReviewRepository {
	return reviewrepository.NewGormReviewRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideStallRepository,
	ProvideReviewRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB) (*http.StallHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewStallHandler,
	)
	return nil, nil
}
