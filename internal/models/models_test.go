package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPublicOmitsPassword(t *testing.T) {
	t.Parallel()

	u := &User{ID: "u1", FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", Password: "hash", Verified: true}

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")

	pub := u.Public()
	assert.Equal(t, PublicUser{ID: "u1", FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", Verified: true}, pub)
	assert.Equal(t, &UserSummary{ID: "u1", FirstName: "Jane", LastName: "Doe"}, u.Summary())
}

func TestUserPrepareNormalizesEmail(t *testing.T) {
	t.Parallel()

	u := &User{Email: "  Jane@X.COM "}
	u.Prepare()
	assert.Equal(t, "jane@x.com", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestPropertyPrepare(t *testing.T) {
	t.Parallel()

	p := &Property{Images: []PropertyImage{{URL: "a"}, {URL: "b"}, {URL: "c"}}}
	p.Prepare()

	assert.NotEmpty(t, p.ID)
	for i, img := range p.Images {
		assert.Equal(t, i, img.Position)
	}
	assert.NotNil(t, p.Amenities)
	assert.NotNil(t, p.Reviews)
}

func TestPropertyAfterFindJoinsHost(t *testing.T) {
	t.Parallel()

	p := &Property{Host: &User{ID: "h1", FirstName: "Host", LastName: "One", Email: "h@x.com"}}
	require.NoError(t, p.AfterFind(nil))
	require.NotNil(t, p.HostInfo)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	host := decoded["host"].(map[string]any)
	assert.Equal(t, "Host", host["firstName"])
	assert.NotContains(t, host, "email")
}

func TestEnumerations(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidCategory("beach"))
	assert.False(t, IsValidCategory("Beach"))
	assert.False(t, IsValidCategory("castles"))
	assert.True(t, IsValidRoomType("shared-room"))
	assert.False(t, IsValidRoomType("suite"))
}

func TestAppErrorIs(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("verify: %w", NewExpiredError("Code expired"))
	assert.True(t, errors.Is(wrapped, ErrExpired))
	assert.False(t, errors.Is(wrapped, ErrInvalid))
	assert.Equal(t, CodeExpired, ErrorCode(wrapped))
	assert.Equal(t, CodeInternal, ErrorCode(errors.New("boom")))
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/missing", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusBadRequest, NewMissingFieldsError(map[string]string{"title": "required"}))
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, NewInternalError(errors.New("pq: secret detail")))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Please fill in all required fields", body.Msg)
	assert.Equal(t, CodeValidation, body.Code)
	assert.Equal(t, "required", body.Missing["title"])

	resp, err = app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "secret detail")
}
