// Package server serves a user's live ledger state over HTTP and
// WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/rulebook/chart"
	"github.com/rustyeddy/rulebook/feed"
	"github.com/rustyeddy/rulebook/journal"
	"github.com/rustyeddy/rulebook/ledger"
)

const (
	writeWait = 10 * time.Second
	pollEvery = 2 * time.Second
)

// Store is what the server needs from the journal.
type Store interface {
	journal.RecordSource
	AddRecord(ctx context.Context, rec ledger.TradeRecord) (ledger.TradeRecord, error)
	DeleteRecord(ctx context.Context, userID, id string) error
	Authenticate(ctx context.Context, email, password string) (journal.Profile, error)
	GetProfile(ctx context.Context, id string) (journal.Profile, error)
}

// Goals returns the current goal thresholds. It is called on every
// request and polled by open WebSocket feeds.
type Goals func() (weekly, lifetime float64)

type Server struct {
	store Store
	goals Goals
	now   func() time.Time
	poll  time.Duration
	log   zerolog.Logger

	upgrader websocket.Upgrader
}

func New(store Store, goals Goals, log zerolog.Logger) *Server {
	return &Server{
		store: store,
		goals: goals,
		now:   time.Now,
		poll:  pollEvery,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// WithClock overrides time.Now, which sets the zone weeks are bucketed in.
func (s *Server) WithClock(now func() time.Time) *Server {
	if now != nil {
		s.now = now
	}
	return s
}

// WithPollInterval sets how often WebSocket feeds re-check goals and
// starting capital.
func (s *Server) WithPollInterval(d time.Duration) *Server {
	if d > 0 {
		s.poll = d
	}
	return s
}

// Handler returns the routed, authenticated handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/records", s.handleListRecords)
	mux.HandleFunc("POST /api/records", s.handleAddRecord)
	mux.HandleFunc("DELETE /api/records/{id}", s.handleDeleteRecord)
	mux.HandleFunc("GET /api/export.csv", s.handleExport)
	mux.HandleFunc("GET /api/chart.png", s.handleChart)
	mux.HandleFunc("GET /ws", s.handleWS)
	return s.authenticate(mux)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	p := profileFrom(r.Context())

	recs, err := s.store.ListRecords(r.Context(), p.ID)
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.aggregate(p, recs))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	p := profileFrom(r.Context())

	recs, err := s.store.ListRecords(r.Context(), p.ID)
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+journal.ExportFileName(s.now())+`"`)
	if err := journal.WriteCSV(w, recs); err != nil {
		s.log.Warn().Err(err).Str("user", p.ID).Msg("csv export failed")
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	p := profileFrom(r.Context())

	recs, err := s.store.ListRecords(r.Context(), p.ID)
	if err != nil {
		s.fail(w, err)
		return
	}

	png, err := chart.RenderBalance(s.aggregate(p, recs).Balances)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleWS streams the user's ledger state: once on connect, then after
// every change to their records.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	p := profileFrom(r.Context())

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	log := s.log.With().Str("user", p.ID).Logger()
	log.Info().Msg("client connected")
	defer log.Info().Msg("client disconnected")

	snapshots, err := s.store.Watch(ctx, p.ID)
	if err != nil {
		log.Warn().Err(err).Msg("watch failed")
		return
	}

	weekly, lifetime := s.goals()
	pipe := feed.New(feed.Options{
		StartingCapital: p.StartingCapital,
		WeeklyGoal:      weekly,
		LifetimeTarget:  lifetime,
		Now:             s.now,
		Logger:          &log,
	})
	updates, unsubscribe := pipe.Subscribe()
	defer unsubscribe()

	events := make(chan feed.Event)
	go feed.Forward(ctx, snapshots, events)
	go s.pollInputs(ctx, p, weekly, lifetime, events)
	go pipe.Run(ctx, events)

	// Reads only detect the peer going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case st := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(st); err != nil {
				log.Warn().Err(err).Msg("write error")
				return
			}
		}
	}
}

// pollInputs sends Goals and Capital events when the configured goals or
// the user's starting capital change.
func (s *Server) pollInputs(ctx context.Context, p journal.Profile, weekly, lifetime float64, events chan<- feed.Event) {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	capital := p.StartingCapital
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var pending []feed.Event
		if w, l := s.goals(); w != weekly || l != lifetime {
			weekly, lifetime = w, l
			pending = append(pending, feed.Goals{Weekly: w, Lifetime: l})
		}
		cur, err := s.store.GetProfile(ctx, p.ID)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warn().Err(err).Str("user", p.ID).Msg("profile refresh failed")
			}
		} else if cur.StartingCapital != capital {
			capital = cur.StartingCapital
			pending = append(pending, feed.Capital{Amount: capital})
		}

		for _, ev := range pending {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Server) aggregate(p journal.Profile, recs []ledger.TradeRecord) ledger.State {
	weekly, lifetime := s.goals()
	return ledger.Aggregate(recs, p.StartingCapital, weekly, lifetime, s.now())
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.log.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
