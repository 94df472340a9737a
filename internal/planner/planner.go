// Package planner runs the travel planning pipeline: three agents executed
// in sequence, each building on the previous agent's output, with tool data
// folded into the researcher's prompt.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wayfarer-ai/wayfarer"
	"github.com/wayfarer-ai/wayfarer/internal/llm"
	"github.com/wayfarer-ai/wayfarer/internal/model"
	"github.com/wayfarer-ai/wayfarer/internal/tools"
)

// EmitFunc receives progress events as the pipeline runs. It is called from
// the goroutine executing Run, never concurrently.
type EmitFunc func(model.Event)

// agent is one step of the pipeline. prompt builds the user prompt from the
// original query and the accumulated context from earlier agents.
type agent struct {
	name   string
	system string
	prompt func(ctx context.Context, p *Planner, query, prior string) string
}

// Planner executes the three-agent travel planning pipeline.
type Planner struct {
	llm    *llm.Client
	tools  *tools.Client
	tracer *wayfarer.Tracer
	logger *slog.Logger
	agents []agent
}

// New creates a planner. The tool client may be nil, in which case the
// researcher runs without live tool data.
func New(llmClient *llm.Client, toolClient *tools.Client, tracer *wayfarer.Tracer, logger *slog.Logger) *Planner {
	return &Planner{
		llm:    llmClient,
		tools:  toolClient,
		tracer: tracer,
		logger: logger,
		agents: pipeline(),
	}
}

// AgentCount returns the number of agents in the pipeline.
func (p *Planner) AgentCount() int { return len(p.agents) }

// Run executes the pipeline for the given query, emitting progress events as
// it goes. The final agent's output is delivered as an EventMessage followed
// by an EventOutput summary. Run stops at the first agent failure.
func (p *Planner) Run(ctx context.Context, query string, emit EmitFunc) error {
	start := time.Now()

	ctx, span := p.tracer.StartSpan(ctx, "travel_planner",
		wayfarer.String("query", query),
		wayfarer.Int("agent_count", len(p.agents)),
	)
	defer span.End()

	emit(model.Event{Type: model.EventStatus, Message: "Workflow built, starting execution"})

	prior := ""
	for _, a := range p.agents {
		output, err := p.runAgent(ctx, a, query, prior, emit)
		if err != nil {
			return fmt.Errorf("planner: agent %s: %w", a.name, err)
		}
		prior = output
	}

	emit(model.Event{
		Type:            model.EventOutput,
		Message:         "Workflow complete",
		DurationSeconds: time.Since(start).Seconds(),
		AgentCount:      len(p.agents),
	})
	return nil
}

func (p *Planner) runAgent(ctx context.Context, a agent, query, prior string, emit EmitFunc) (string, error) {
	ctx, span := p.tracer.StartSpan(ctx, "agent."+a.name,
		wayfarer.String("agent", a.name),
	)
	defer span.End()

	p.logger.Info("planner: agent started", "agent", a.name)
	emit(model.Event{Type: model.EventAgentStarted, Agent: a.name})

	output, err := p.llm.Complete(ctx, a.system, a.prompt(ctx, p, query, prior))
	if err != nil {
		return "", err
	}

	p.logger.Info("planner: agent completed", "agent", a.name, "output_chars", len(output))
	emit(model.Event{Type: model.EventAgentCompleted, Agent: a.name})
	emit(model.Event{Type: model.EventMessage, Agent: a.name, Text: output})

	return output, nil
}

func pipeline() []agent {
	return []agent{
		{
			name: "destination_researcher",
			system: "You are a travel destination researcher. Given a travel query, " +
				"recommend destinations that fit it. Use any provided weather and " +
				"attraction data. Be concise and factual.",
			prompt: func(ctx context.Context, p *Planner, query, _ string) string {
				var b strings.Builder
				b.WriteString(query)
				if data := p.toolContext(ctx, query); data != "" {
					b.WriteString("\n\nLive travel data:\n")
					b.WriteString(data)
				}
				return b.String()
			},
		},
		{
			name: "itinerary_planner",
			system: "You are an itinerary planner. Turn the researcher's destination " +
				"notes into a day-by-day itinerary matching the traveler's query.",
			prompt: func(_ context.Context, _ *Planner, query, prior string) string {
				return "Traveler's query: " + query + "\n\nResearcher's notes:\n" + prior
			},
		},
		{
			name: "local_guide",
			system: "You are a local guide. Polish the itinerary with local tips: " +
				"food, etiquette, transport, and neighborhoods worth a detour.",
			prompt: func(_ context.Context, _ *Planner, query, prior string) string {
				return "Traveler's query: " + query + "\n\nDraft itinerary:\n" + prior
			},
		},
	}
}

// toolContext fetches weather and attraction data for every known city the
// query mentions. Tool failures are logged and skipped; the pipeline runs on
// whatever data it could get.
func (p *Planner) toolContext(ctx context.Context, query string) string {
	if p.tools == nil {
		return ""
	}

	lower := strings.ToLower(query)
	var b strings.Builder
	for _, city := range tools.Cities() {
		if !strings.Contains(lower, strings.ToLower(city)) {
			continue
		}

		if w, err := p.tools.Weather(ctx, city); err != nil {
			p.logger.Warn("planner: weather lookup failed", "city", city, "error", err)
		} else {
			fmt.Fprintf(&b, "- %s weather: %s, %d C, best season %s\n",
				w.City, w.Condition, w.TempC, w.BestSeason)
		}

		if attractions, err := p.tools.Attractions(ctx, city); err != nil {
			p.logger.Warn("planner: attractions lookup failed", "city", city, "error", err)
		} else {
			fmt.Fprintf(&b, "- %s attractions:\n", city)
			for _, a := range attractions {
				fmt.Fprintf(&b, "    %s (%s, %s)\n", a.Name, a.Kind, a.Duration)
			}
		}
	}
	return b.String()
}
