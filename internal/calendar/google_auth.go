package calendar

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"meetingbot/pkg/config"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

// Client talks to a single Google calendar in one fixed time zone. The OAuth
// client secret and the initial authorized token arrive base64-encoded in the
// environment; refreshed tokens are persisted in Postgres so a restart does
// not force re-authorization.
type Client struct {
	config     *oauth2.Config
	db         *sqlx.DB
	calendarID string
	loc        *time.Location
	seedToken  string
}

func NewClient(cfg *config.Config, db *sqlx.DB, loc *time.Location) (*Client, error) {
	if cfg.GoogleCredentials == "" {
		return nil, errors.New("missing GOOGLE_CREDENTIALS_B64")
	}

	credentials, err := base64.StdEncoding.DecodeString(cfg.GoogleCredentials)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Google credentials: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(credentials, gcal.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Google credentials: %w", err)
	}

	return &Client{
		config:     oauthConfig,
		db:         db,
		calendarID: cfg.GoogleCalendarID,
		loc:        loc,
		seedToken:  cfg.GoogleToken,
	}, nil
}

func (c *Client) httpClient(ctx context.Context) (*http.Client, error) {
	token, err := c.loadToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("not authorized with Google Calendar: %w", err)
	}

	if token.Expiry.Before(time.Now()) {
		newToken, err := c.config.TokenSource(ctx, token).Token()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh Google token: %w", err)
		}
		if newToken.AccessToken != token.AccessToken {
			token = newToken
			if err := c.saveToken(ctx, token); err != nil {
				return nil, err
			}
		}
	}

	return c.config.Client(ctx, token), nil
}

func (c *Client) loadToken(ctx context.Context) (*oauth2.Token, error) {
	query := `
		SELECT access_token, refresh_token, token_type, expiry
		FROM google_tokens
		WHERE id = 1
	`

	var row struct {
		AccessToken  string         `db:"access_token"`
		RefreshToken sql.NullString `db:"refresh_token"`
		TokenType    string         `db:"token_type"`
		Expiry       time.Time      `db:"expiry"`
	}

	err := c.db.GetContext(ctx, &row, query)
	if err == nil {
		return &oauth2.Token{
			AccessToken:  row.AccessToken,
			RefreshToken: row.RefreshToken.String,
			TokenType:    row.TokenType,
			Expiry:       row.Expiry,
		}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load Google token: %w", err)
	}

	return c.seedTokenFromEnv(ctx)
}

// seedTokenFromEnv imports the base64 token supplied through the environment
// the first time no token row exists yet.
func (c *Client) seedTokenFromEnv(ctx context.Context) (*oauth2.Token, error) {
	if c.seedToken == "" {
		return nil, errors.New("no stored token and GOOGLE_TOKEN_B64 is not set")
	}

	raw, err := base64.StdEncoding.DecodeString(c.seedToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decode GOOGLE_TOKEN_B64: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("failed to parse GOOGLE_TOKEN_B64: %w", err)
	}

	if err := c.saveToken(ctx, &token); err != nil {
		return nil, err
	}

	logrus.Info("Imported Google token from environment")
	return &token, nil
}

func (c *Client) saveToken(ctx context.Context, token *oauth2.Token) error {
	query := `
		INSERT INTO google_tokens (id, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id)
		DO UPDATE SET
			access_token = $1,
			refresh_token = COALESCE($2, google_tokens.refresh_token),
			token_type = $3,
			expiry = $4,
			updated_at = NOW()
	`

	var refreshToken interface{}
	if token.RefreshToken != "" {
		refreshToken = token.RefreshToken
	}

	_, err := c.db.ExecContext(ctx, query,
		token.AccessToken,
		refreshToken,
		token.TokenType,
		token.Expiry)
	if err != nil {
		return fmt.Errorf("failed to save Google token: %w", err)
	}

	return nil
}
