package handler

import (
	"errors"
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlugs struct {
	taken  map[string]bool
	err    error
	checks []string
}

func (f *fakeSlugs) CheckAnnouncementSlugIfExists(slug string) (bool, error) {
	f.checks = append(f.checks, slug)
	if f.err != nil {
		return false, f.err
	}
	return f.taken[slug], nil
}

func TestUniqueAnnouncementSlug(t *testing.T) {
	tests := []struct {
		name  string
		title string
		taken []string
		want  string
	}{
		{name: "free", title: "Cierre de año 2025", want: "cierre-de-ano-2025"},
		{name: "taken once", title: "Cierre de año 2025", taken: []string{"cierre-de-ano-2025"}, want: "cierre-de-ano-2025-1"},
		{name: "taken twice", title: "Vacaciones colectivas", taken: []string{"vacaciones-colectivas", "vacaciones-colectivas-1"}, want: "vacaciones-colectivas-2"},
		{name: "no letters", title: "¡¡¡ !!!", want: "comunicado"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			slugs := &fakeSlugs{taken: map[string]bool{}}
			for _, s := range tc.taken {
				slugs.taken[s] = true
			}

			got, err := uniqueAnnouncementSlug(slugs, tc.title)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Len(t, slugs.checks, len(tc.taken)+1)
		})
	}
}

func TestUniqueAnnouncementSlugStoreError(t *testing.T) {
	slugs := &fakeSlugs{err: errors.New("conexión cerrada")}
	_, err := uniqueAnnouncementSlug(slugs, "Comunicado")
	assert.EqualError(t, err, "conexión cerrada")
}

func TestSanitizeAnnouncementBody(t *testing.T) {
	policy := bluemonday.UGCPolicy()

	body, ok := sanitizeAnnouncementBody(policy, `<p>Hola <strong>equipo</strong></p><script>alert(1)</script>`)
	assert.True(t, ok)
	assert.Equal(t, `<p>Hola <strong>equipo</strong></p>`, body)

	body, ok = sanitizeAnnouncementBody(policy, `<a href="javascript:alert(1)" onclick="x()">enlace</a>`)
	assert.True(t, ok)
	assert.NotContains(t, body, "javascript")
	assert.NotContains(t, body, "onclick")
	assert.Contains(t, body, "enlace")

	_, ok = sanitizeAnnouncementBody(policy, `<script>alert(1)</script>  `)
	assert.False(t, ok)
}
