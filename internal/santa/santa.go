// Package santa simulates the Santa video persona. There is no model
// behind it: every turn waits a fixed "thinking" delay and answers from
// a small canned script keyed on the last message. It stands in for an
// eventual real speech/video integration.
package santa

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/npdirect/npdirect/internal/model"
)

// ErrEmptyHistory is returned when a turn arrives with no messages.
var ErrEmptyHistory = errors.New("conversation history is empty")

// DefaultVideoURL is the canned response clip.
const DefaultVideoURL = "https://www.w3schools.com/html/mov_bbb.mp4"

// GreetingVideoURL is the clip returned for greetings.
const GreetingVideoURL = "https://www.w3schools.com/html/movie.mp4"

// canned maps a lowercase keyword in the last message to a reply.
// First match wins, in declaration order.
var canned = []struct {
	keyword string
	reply   model.SantaReply
}{
	{
		keyword: "hello",
		reply: model.SantaReply{
			Text:  "Ho ho ho! Hello there, my friend! Merry Christmas!",
			Video: GreetingVideoURL,
		},
	},
}

// defaultReply is returned when no keyword matches.
var defaultReply = model.SantaReply{
	Text:  "Ho ho ho! I am in Simulation Mode. Your website works perfectly!",
	Video: DefaultVideoURL,
}

// Simulator produces canned Santa replies after an artificial delay.
type Simulator struct {
	delay time.Duration
}

// NewSimulator creates a Simulator with the given thinking delay.
func NewSimulator(delay time.Duration) *Simulator {
	return &Simulator{delay: delay}
}

// Respond waits the configured delay, then answers the last message of
// the history. The wait is cut short if the context is cancelled.
func (s *Simulator) Respond(ctx context.Context, history []model.Message) (model.SantaReply, error) {
	if len(history) == 0 {
		return model.SantaReply{}, ErrEmptyHistory
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return model.SantaReply{}, ctx.Err()
		}
	}

	last := strings.ToLower(history[len(history)-1].Content)
	for _, c := range canned {
		if strings.Contains(last, c.keyword) {
			return c.reply, nil
		}
	}

	return defaultReply, nil
}
