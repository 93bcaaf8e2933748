package model

import (
	"strings"

	"telegram-announce-bot/internal/domain"
)

type DestinationKind string

const (
	DestinationGroup   DestinationKind = "group"
	DestinationChannel DestinationKind = "channel"
)

// Selection-token prefixes carried in callback data, plus the cancel token.
const (
	GroupTokenPrefix   = "group_"
	ChannelTokenPrefix = "channel_"
	CancelToken        = "cancel"
)

// Destination is one configured broadcast target.
type Destination struct {
	Key    string
	ChatID int64
	Name   string
	Kind   DestinationKind
}

// SelectionToken is the callback payload that picks this destination.
func (d Destination) SelectionToken() string {
	if d.Kind == DestinationChannel {
		return ChannelTokenPrefix + d.Key
	}
	return GroupTokenPrefix + d.Key
}

// DestinationRegistry is the immutable set of configured groups and channels,
// keeping configuration order for prompt rendering.
type DestinationRegistry struct {
	groups   []Destination
	channels []Destination
	byToken  map[string]Destination
}

func NewDestinationRegistry(groups, channels []Destination) *DestinationRegistry {
	r := &DestinationRegistry{
		groups:   make([]Destination, 0, len(groups)),
		channels: make([]Destination, 0, len(channels)),
		byToken:  make(map[string]Destination, len(groups)+len(channels)),
	}
	for _, d := range groups {
		d.Kind = DestinationGroup
		r.groups = append(r.groups, d)
		r.byToken[d.SelectionToken()] = d
	}
	for _, d := range channels {
		d.Kind = DestinationChannel
		r.channels = append(r.channels, d)
		r.byToken[d.SelectionToken()] = d
	}
	return r
}

func (r *DestinationRegistry) Groups() []Destination   { return r.groups }
func (r *DestinationRegistry) Channels() []Destination { return r.channels }
func (r *DestinationRegistry) Len() int                { return len(r.byToken) }

// Resolve maps a selection token to a configured destination. The error
// distinguishes an unknown channel key, an unknown group key and a token of
// unrecognized shape, since each produces a different user-facing message.
func (r *DestinationRegistry) Resolve(token string) (*Destination, error) {
	if d, ok := r.byToken[token]; ok {
		return &d, nil
	}
	switch {
	case strings.HasPrefix(token, ChannelTokenPrefix):
		return nil, domain.ErrInvalidChannel
	case strings.HasPrefix(token, GroupTokenPrefix):
		return nil, domain.ErrInvalidGroup
	default:
		return nil, domain.ErrInvalidSelection
	}
}
