package httpapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsCatalog/models"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func TestPartLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin("root")
	reader := env.regular("alice")

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/types", admin, nameRequest{Name: "Blade"}).Code)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/types", admin, nameRequest{Name: "Bit"}).Code)
	rec := env.do(http.MethodPost, "/restrictions", admin, descriptionRequest{Description: "Limited"})
	require.Equal(t, http.StatusCreated, rec.Code)
	limited := decode[models.Restriction](t, rec)

	rec = env.do(http.MethodPost, "/parts", admin, partRequest{
		Name:          "DranSword",
		Color:         "blue",
		Type:          "Blade",
		RestrictionID: &limited.ID,
		Description:   "attack blade",
		Stats:         models.Stats{MinAttack: i64(50), MaxAttack: i64(60), Weight: f64(35.1)},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Part](t, rec)
	assert.Equal(t, "Blade", created.Type)
	require.NotNil(t, created.StatsID)
	assert.Equal(t, created.ID, *created.StatsID)
	require.NotNil(t, created.Restriction)
	assert.Equal(t, "Limited", created.Restriction.Description)
	require.NotNil(t, created.Stats)
	assert.Equal(t, int64(60), *created.Stats.MaxAttack)
	assert.Nil(t, created.Stats.Burst)
	assert.Contains(t, rec.Body.String(), `"min_attack":50`)

	rec = env.do(http.MethodGet, fmt.Sprintf("/parts/%d", created.ID), reader, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[models.Part](t, rec))

	rec = env.do(http.MethodGet, "/parts?type=Blade", reader, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Part](t, rec), 1)

	rec = env.do(http.MethodGet, "/parts?type=Bit", reader, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = env.do(http.MethodPatch, fmt.Sprintf("/parts/%d", created.ID), admin, partRequest{
		Name:  "DranSword Metal",
		Type:  "Bit",
		Stats: models.Stats{Burst: i64(80)},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Part](t, rec)
	assert.Equal(t, "DranSword Metal", updated.Name)
	assert.Equal(t, "Bit", updated.Type)
	assert.Empty(t, updated.Color)
	assert.Nil(t, updated.Restriction)
	assert.Nil(t, updated.Stats.MaxAttack, "stats are overwritten, not merged")
	assert.Equal(t, int64(80), *updated.Stats.Burst)

	rec = env.do(http.MethodDelete, fmt.Sprintf("/parts/%d", created.ID), admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, fmt.Sprintf("/parts/%d", created.ID), reader, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "part not found", detail(t, rec))

	rec = env.do(http.MethodDelete, fmt.Sprintf("/parts/%d", created.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPartWriteErrors(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin("root")
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/types", admin, nameRequest{Name: "Blade"}).Code)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		detail string
	}{
		{"unknown type", http.MethodPost, "/parts", partRequest{Name: "X", Type: "Nope"}, http.StatusNotFound, "part type not found"},
		{"unknown restriction", http.MethodPost, "/parts", partRequest{Name: "X", Type: "Blade", RestrictionID: i64(42)}, http.StatusNotFound, "restriction not found"},
		{"missing name", http.MethodPost, "/parts", partRequest{Type: "Blade"}, http.StatusBadRequest, "invalid input: name is required"},
		{"missing type", http.MethodPost, "/parts", partRequest{Name: "X"}, http.StatusBadRequest, "invalid input: type is required"},
		{"update missing part", http.MethodPatch, "/parts/99", partRequest{Name: "X", Type: "Blade"}, http.StatusNotFound, "part not found"},
		{"bad id", http.MethodGet, "/parts/zero", nil, http.StatusBadRequest, `invalid id: "zero"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(tc.method, tc.path, admin, tc.body)
			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.detail, detail(t, rec))
		})
	}

	rec := env.do(http.MethodGet, "/parts", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String(), "failed creates persist nothing")
}
