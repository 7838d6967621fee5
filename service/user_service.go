package service

import (
	"context"
	"math"

	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/ports"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// UserService serves the admin user listing
type UserService struct {
	users ports.CredentialStore
}

func NewUserService(users ports.CredentialStore) *UserService {
	return &UserService{users: users}
}

// List returns one page of users. page starts at 1; limit defaults to
// DefaultPageLimit and is capped at MaxPageLimit.
func (s *UserService) List(ctx context.Context, page, limit int, search string) (*core.UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	// Keeps (page-1)*limit from overflowing; such a page is empty anyway
	if maxPage := math.MaxInt/limit + 1; page > maxPage {
		page = maxPage
	}

	filter := core.UserFilter{Search: search, Offset: (page - 1) * limit, Limit: limit}

	var (
		total int
		users []core.UserSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.users.CountUsers(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.users.ListUsers(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if users == nil {
		users = []core.UserSummary{}
	}

	return &core.UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}
