package server

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jonathan/chaos-engine/internal/humanize"
	"github.com/jonathan/chaos-engine/internal/types"
)

// handleHumanize runs the full pass pipeline over the submitted text.
func (s *Server) handleHumanize(w http.ResponseWriter, r *http.Request) {
	var req types.HumanizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, err)
		return
	}

	opts := s.humanizeOptions(req.Options)
	engine, err := s.newEngine(req.Options)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := engine.Transform(r.Context(), *req.Text, opts)
	if err != nil {
		if r.Context().Err() != nil {
			s.logger.Info("humanize cancelled by client")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAnalyze scores text without changing it.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, humanize.AnalyzeRisk(*req.Text))
}

// humanizeOptions overlays request options on the server defaults.
func (s *Server) humanizeOptions(in *types.HumanizeOptions) humanize.Options {
	opts := s.humanizeOpts
	if in == nil {
		return opts
	}
	if in.Passes != nil {
		opts.Passes = *in.Passes
	}
	if in.InterPassDelayMs != nil {
		opts.InterPassDelay = time.Duration(*in.InterPassDelayMs) * time.Millisecond
	}
	if in.VoiceFrequency != nil {
		opts.VoiceFrequency = *in.VoiceFrequency
	}
	if in.HedgeFrequency != nil {
		opts.HedgeFrequency = *in.HedgeFrequency
	}
	if in.QuestionFrequency != nil {
		opts.QuestionFrequency = *in.QuestionFrequency
	}
	return opts
}

func (s *Server) newEngine(in *types.HumanizeOptions) (*humanize.Engine, error) {
	logger := humanize.WithLogger(s.logger.With(slog.String("component", "humanize")))
	if in != nil && in.Seed != nil {
		return humanize.NewSeeded(*in.Seed, logger)
	}
	return humanize.New(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), logger)
}
