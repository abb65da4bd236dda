package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/gitrello/github-integration/internal/domain/profile"
)

// --- GitHub profiles ---

const profileColumns = `id, user_id, github_user_id, github_login, access_token, created_at`

func scanProfile(row scannable) (profile.Profile, error) {
	var p profile.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.GithubUserID, &p.GithubLogin,
		&p.AccessToken, &p.CreatedAt)
	if err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

func (s *Store) CreateProfile(ctx context.Context, n profile.NewProfile) (*profile.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO github_profiles (id, user_id, github_user_id, github_login, access_token)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+profileColumns,
		uuid.NewString(), n.UserID, n.GithubUserID, n.GithubLogin, n.AccessToken)
	p, err := scanProfile(row)
	if err != nil {
		return nil, uniqueWrap(err, "create profile for user %d", n.UserID)
	}
	return &p, nil
}

func (s *Store) GetProfileByUserID(ctx context.Context, userID int64) (*profile.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM github_profiles WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if err != nil {
		return nil, notFoundWrap(err, "get profile for user %d", userID)
	}
	return &p, nil
}
