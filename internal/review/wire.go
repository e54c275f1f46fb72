//go:build wireinject
// +build wireinject

package review

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/pinned-app/pinned/internal/review/delivery/http"
	"github.com/pinned-app/pinned/internal/review/domain"
	"github.com/pinned-app/pinned/internal/review/repository"
	"github.com/pinned-app/pinned/internal/review/usecase/command"
	stalldomain "github.com/pinned-app/pinned/internal/stall/domain"
	stallrepository "github.com/pinned-app/pinned/internal/stall/repository"
)

// ProvideReviewRepository provides the review repository
func ProvideReviewRepository(db *gorm.DB) domain.ReviewRepository {
	return repository.NewGormReviewRepository(db)
}

// ProvideVoteRepository provides the vote repository
func ProvideVoteRepository(db *gorm.DB) domain.VoteRepository {
	return repository.NewGormVoteRepository(db)
}

// ProvideStallRepository provides the stall repository used for
// ownership checks on review submission
func ProvideStallRepository(db *gorm.DB) stalldomain.StallRepository {
	return stallrepository.NewGormStallRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideReviewRepository,
	ProvideVoteRepository,
	ProvideStallRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies.
// The publisher may be nil when Kafka is disabled.
func InitializeHTTPHandler(db *gorm.DB, publisher command.ReviewEventPublisher) (*http.ReviewHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewReviewHandler,
	)
	return nil, nil
}
