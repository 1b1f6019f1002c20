package extractor

import (
	"errors"
	"fmt"

	"github.com/dropwatch/dropwatch/internal/models"
)

// ErrNoStrategy is returned when no registered strategy matches a URL.
var ErrNoStrategy = errors.New("no extraction strategy matches url")

// Strategy bundles everything site-specific about extraction: the URL
// pattern, the prompt sent to the model, response parsing and the CSS
// selectors for the colorway fallback.
type Strategy interface {
	Name() string
	Matches(url string) bool
	Prompt() string
	ParseResponse(raw string) (*models.Product, error)
	ColorwaySelectors() []string
}

// Registry holds site strategies in registration order.
type Registry struct {
	strategies []Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	return &Registry{strategies: strategies}
}

// DefaultRegistry returns a registry with every built-in strategy.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewAbercrombie(),
	)
}

// Register appends a strategy. Resolution is first-match-wins, so when
// two patterns overlap the earlier registration silently takes the URL.
func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
}

// Resolve returns the first registered strategy whose pattern matches
// the URL.
func (r *Registry) Resolve(url string) (Strategy, error) {
	for _, s := range r.strategies {
		if s.Matches(url) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoStrategy, url)
}
