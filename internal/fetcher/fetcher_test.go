package fetcher_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrevinB/InkwellKeeper/internal/config"
	"github.com/BrevinB/InkwellKeeper/internal/fetcher"
	"github.com/BrevinB/InkwellKeeper/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newClient(baseURL string) *fetcher.Client {
	return fetcher.New(config.FetchConfig{
		BaseURL:    baseURL,
		Workers:    2,
		Retries:    2,
		RetryDelay: 10 * time.Millisecond,
		Timeout:    5 * time.Second,
	}, quietLogger())
}

func rawCard(name, set, code, number string) models.RawCard {
	return models.RawCard{
		Name:            name,
		Set:             models.RawSet{Name: set, Code: code},
		CollectorNumber: number,
		Rarity:          "Common",
	}
}

func catalogHandler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/sets", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []fetcher.SetInfo{
				{Code: "1", Name: "The First Chapter"},
				{Code: "2", Name: "Rise of the Floodborn"},
			},
		})
	})
	mux.HandleFunc("/cards/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		var results []models.RawCard
		switch q {
		case "set:1":
			assert.Equal(t, "prints", r.URL.Query().Get("unique"))
			results = []models.RawCard{
				rawCard("Elsa", "The First Chapter", "1", "4"),
				rawCard("Olaf", "The First Chapter", "1", "8"),
			}
		case "set:2":
			assert.Equal(t, "prints", r.URL.Query().Get("unique"))
			results = []models.RawCard{rawCard("Anna", "Rise of the Floodborn", "2", "1")}
		case "rarity:epic":
			results = []models.RawCard{rawCard("Epic Elsa", "The First Chapter", "1", "230")}
		case "rarity:iconic":
			results = nil
		default:
			t.Errorf("unexpected query %q", q)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
	})
	mux.HandleFunc("/sets/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{{"name": "a"}, {"name": "b"}})
	})
	return mux
}

func TestFetchAllCards(t *testing.T) {
	srv := httptest.NewServer(catalogHandler(t))
	defer srv.Close()

	cards, err := newClient(srv.URL).FetchAllCards(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 4)

	// Per-set results keep set-listing order regardless of worker timing.
	assert.Equal(t, "Elsa", cards[0].Name)
	assert.Equal(t, "Olaf", cards[1].Name)
	assert.Equal(t, "Anna", cards[2].Name)
	assert.Equal(t, "Epic Elsa", cards[3].Name)
}

func TestFetchSetCardCount(t *testing.T) {
	srv := httptest.NewServer(catalogHandler(t))
	defer srv.Close()

	count, err := newClient(srv.URL).FetchSetCardCount(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []fetcher.SetInfo{{Code: "1", Name: "The First Chapter"}}})
	}))
	defer srv.Close()

	sets, err := newClient(srv.URL).FetchSets(context.Background())
	require.NoError(t, err)
	assert.Len(t, sets, 1)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSetListingFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).FetchAllCards(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set listing")
}

// A single failing set is skipped; the rest of the collection still
// materializes.
func TestFailedSetIsSkipped(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sets", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []fetcher.SetInfo{
				{Code: "1", Name: "The First Chapter"},
				{Code: "2", Name: "Rise of the Floodborn"},
			},
		})
	})
	mux.HandleFunc("/cards/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		switch q {
		case "set:1":
			w.WriteHeader(http.StatusInternalServerError)
		case "set:2":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"results": []models.RawCard{rawCard("Anna", "Rise of the Floodborn", "2", "1")},
			})
		default:
			json.NewEncoder(w).Encode(map[string]interface{}{"results": []models.RawCard{}})
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cards, err := newClient(srv.URL).FetchAllCards(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Anna", cards[0].Name)
}
