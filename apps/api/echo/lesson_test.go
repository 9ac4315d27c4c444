package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalimu/darasa/core/lesson"
)

func Test_lessonApi_query(t *testing.T) {
	app, _ := newTestServer(t)

	req, rec := newRequest(http.MethodGet, "/v1/lessons")
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var parts []lesson.PartGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parts))
	require.Len(t, parts, 1)
	assert.Equal(t, "Fundamentals", parts[0].Part)
	require.Len(t, parts[0].Chapters, 2)
	assert.Equal(t, "getting-started", parts[0].Chapters[0].Slug)
	assert.Equal(t, "widgets", parts[0].Chapters[1].Slug)
}

func Test_lessonApi_retrieve(t *testing.T) {
	app, _ := newTestServer(t)

	req, rec := newRequest(http.MethodGet, "/v1/lessons/getting-started")
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var ch lesson.Chapter
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ch))
	assert.Equal(t, 1, ch.Number)
	assert.Equal(t, "Getting Started", ch.Title)
	assert.Len(t, ch.Sections, 2)

	// answer keys never leave the server
	assert.NotContains(t, rec.Body.String(), "answer")
	assert.NotContains(t, rec.Body.String(), "run subcommand")
}

func Test_lessonApi_retrieveUnknown(t *testing.T) {
	app, _ := newTestServer(t)

	req, rec := newRequest(http.MethodGet, "/v1/lessons/nope")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_lessonApi_nav(t *testing.T) {
	app, _ := newTestServer(t)

	tests := []struct {
		name     string
		slug     string
		wantPrev string
		wantNext string
	}{
		{name: "first chapter has no prev", slug: "getting-started", wantNext: "widgets"},
		{name: "last chapter has no next", slug: "widgets", wantPrev: "getting-started"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, "/v1/lessons/"+tt.slug+"/nav")
			app.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var nav lesson.Nav
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nav))
			if tt.wantPrev == "" {
				assert.Nil(t, nav.Prev)
			} else {
				require.NotNil(t, nav.Prev)
				assert.Equal(t, tt.wantPrev, nav.Prev.Slug)
			}
			if tt.wantNext == "" {
				assert.Nil(t, nav.Next)
			} else {
				require.NotNil(t, nav.Next)
				assert.Equal(t, tt.wantNext, nav.Next.Slug)
			}
		})
	}
}
