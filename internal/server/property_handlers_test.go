package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"nestaway/internal/models"
	"nestaway/internal/service"
	"nestaway/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upload struct {
	name        string
	contentType string
	data        []byte
}

func listingForm() map[string]string {
	return map[string]string{
		"title":       "Seaside cottage",
		"description": "Steps from the sand",
		"price":       "150",
		"location":    "Malibu, CA",
		"category":    "beach",
		"roomType":    "entire-home",
		"beds":        "2",
		"bedrooms":    "1",
		"bathrooms":   "1.5",
		"maxGuests":   "4",
		"address":     `{"street":"1 Ocean Ave","city":"Malibu","state":"CA","country":"US","zipCode":"90265"}`,
		"amenities":   `["WiFi","Hot Tub",""]`,
	}
}

func multipartRequest(t *testing.T, fields map[string]string, files []upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/properties", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func pngUploads(t *testing.T, n int) []upload {
	out := make([]upload, n)
	for i := range out {
		out[i] = upload{name: fmt.Sprintf("photo%d.png", i), contentType: "image/png", data: testutil.TinyPNG(t, 8, 6)}
	}
	return out
}

type createResponse struct {
	Msg      string          `json:"msg"`
	Property models.Property `json:"property"`
}

func TestCreateProperty(t *testing.T) {
	env := newTestEnv(t)
	cookie := login(t, env, "host@x.com")

	req := multipartRequest(t, listingForm(), pngUploads(t, 2))
	req.AddCookie(cookie)
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out createResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, service.MsgPropertyCreated, out.Msg)
	p := out.Property
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 150.0, p.Price)
	assert.Equal(t, 1.5, p.Bathrooms)
	assert.Equal(t, 4, p.MaxGuests)
	assert.Equal(t, "Malibu", p.Address.City)
	assert.Equal(t, []string{"WiFi", "Hot Tub"}, p.Amenities)
	require.Len(t, p.Images, 2)
	assert.Contains(t, p.Images[0].URL, "https://cdn.test/nestaway/properties/")
	require.NotNil(t, p.HostInfo)
	assert.Equal(t, "Ada", p.HostInfo.FirstName)
	assert.Equal(t, 2, env.store.Uploads())

	// The new listing is immediately visible to search, detail and my-properties.
	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/properties?search=seaside", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page service.PropertyPage
	require.NoError(t, json.Unmarshal(body, &page))
	assert.EqualValues(t, 1, page.Total)

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/properties/"+p.ID, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mine := httptest.NewRequest(http.MethodGet, "/api/properties/user/my-properties", nil)
	mine.AddCookie(cookie)
	resp, body = env.do(t, mine)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []models.Property
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
}

func TestCreatePropertyDefaultsCounts(t *testing.T) {
	env := newTestEnv(t)
	cookie := login(t, env, "host@x.com")

	form := listingForm()
	delete(form, "beds")
	delete(form, "bathrooms")
	form["maxGuests"] = "many"
	form["address"] = "{not json"
	req := multipartRequest(t, form, pngUploads(t, 1))
	req.AddCookie(cookie)
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out createResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 1, out.Property.Beds)
	assert.Equal(t, 1.0, out.Property.Bathrooms)
	assert.Equal(t, 1, out.Property.MaxGuests)
	assert.Empty(t, out.Property.Address.City)
}

func TestCreatePropertyRejected(t *testing.T) {
	big := make([]byte, 6*1024*1024)
	copy(big, testutil.TinyPNG(t, 4, 4))

	tests := []struct {
		name       string
		mutate     func(map[string]string)
		files      func(t *testing.T) []upload
		wantMsg    string
		wantFields []string
	}{
		{
			name:       "no images",
			files:      func(*testing.T) []upload { return nil },
			wantMsg:    "At least one image is required",
			wantFields: []string{"images"},
		},
		{
			name:    "too many images",
			files:   func(t *testing.T) []upload { return pngUploads(t, 11) },
			wantMsg: "Too many files. Maximum is 10 images",
		},
		{
			name:       "missing title and bad price",
			mutate:     func(f map[string]string) { delete(f, "title"); f["price"] = "free" },
			files:      func(t *testing.T) []upload { return pngUploads(t, 1) },
			wantMsg:    "Please fill in all required fields",
			wantFields: []string{"title", "price"},
		},
		{
			name:    "not an image",
			files:   func(*testing.T) []upload { return []upload{{name: "notes.txt", contentType: "text/plain", data: []byte("hello")}} },
			wantMsg: "Only image files are allowed",
		},
		{
			name:    "image too large",
			files:   func(*testing.T) []upload { return []upload{{name: "big.png", contentType: "image/png", data: big}} },
			wantMsg: "File size too large. Maximum size is 5MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			cookie := login(t, env, "host@x.com")

			form := listingForm()
			if tt.mutate != nil {
				tt.mutate(form)
			}
			req := multipartRequest(t, form, tt.files(t))
			req.AddCookie(cookie)
			resp, body := env.do(t, req)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			out := decodeError(t, body)
			assert.Equal(t, tt.wantMsg, out.Msg)
			for _, f := range tt.wantFields {
				assert.Contains(t, out.Missing, f)
			}
			assert.Zero(t, env.store.Uploads())
			assert.Zero(t, env.properties.Creates)
		})
	}
}

func TestCreatePropertyUnverifiedHost(t *testing.T) {
	env := newTestEnv(t)
	host := env.users.Seed(&models.User{FirstName: "Un", LastName: "Verified", Email: "un@x.com"})
	tok, err := env.srv.sessions.Issue(host.ID)
	require.NoError(t, err)

	req := multipartRequest(t, listingForm(), pngUploads(t, 1))
	req.AddCookie(&http.Cookie{Name: "token", Value: tok.Value})
	resp, body := env.do(t, req)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please verify your email to list a property", decodeError(t, body).Msg)
	assert.Zero(t, env.store.Uploads())
}

func TestCreatePropertyRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, multipartRequest(t, listingForm(), pngUploads(t, 1)))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/properties/user/my-properties", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreatePropertyStorageFailure(t *testing.T) {
	env := newTestEnv(t)
	cookie := login(t, env, "host@x.com")
	env.store.Err = assert.AnError

	req := multipartRequest(t, listingForm(), pngUploads(t, 1))
	req.AddCookie(cookie)
	resp, body := env.do(t, req)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to upload images", decodeError(t, body).Msg)
	assert.Zero(t, env.properties.Creates)
}

func TestListProperties(t *testing.T) {
	env := newTestEnv(t)
	host := env.users.Seed(&models.User{FirstName: "Hal", LastName: "Host", Email: "hal@x.com", Verified: true})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := func(title, category string, price float64, beds int) {
		base = base.Add(time.Hour)
		p := &models.Property{
			CreatedAt: base,
			Title: title, Description: "d", Price: price, Location: "Somewhere",
			Category: category, RoomType: "entire-home", Beds: beds, Bedrooms: 1,
			Bathrooms: 1, MaxGuests: 2, HostID: host.ID, IsAvailable: true,
		}
		require.NoError(t, env.properties.Create(t.Context(), p))
	}
	seed("Cheap cabin", "mountain", 50, 1)
	seed("City loft", "city", 120, 2)
	seed("Beach villa", "beach", 400, 4)

	tests := []struct {
		name   string
		query  string
		titles []string
	}{
		{name: "all newest first", query: "", titles: []string{"Beach villa", "City loft", "Cheap cabin"}},
		{name: "price ascending", query: "?sort=price_asc", titles: []string{"Cheap cabin", "City loft", "Beach villa"}},
		{name: "price window", query: "?priceMin=100&priceMax=200", titles: []string{"City loft"}},
		{name: "min beds", query: "?beds=2&sort=price_desc", titles: []string{"Beach villa", "City loft"}},
		{name: "category", query: "?category=mountain", titles: []string{"Cheap cabin"}},
		{name: "search", query: "?search=LOFT", titles: []string{"City loft"}},
		{name: "second page", query: "?limit=2&page=2", titles: []string{"Cheap cabin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/properties"+tt.query, nil))
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var page service.PropertyPage
			require.NoError(t, json.Unmarshal(body, &page))
			titles := make([]string, 0, len(page.Properties))
			for _, p := range page.Properties {
				titles = append(titles, p.Title)
			}
			assert.Equal(t, tt.titles, titles)
		})
	}

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/properties?limit=2", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page service.PropertyPage
	require.NoError(t, json.Unmarshal(body, &page))
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
}

func TestGetPropertyNotFound(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/properties/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Property not found", decodeError(t, body).Msg)
}
