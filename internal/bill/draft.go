// Package bill holds the mutable draft a user edits before freezing it into
// a snapshot. The draft is an explicit state container: every mutation is
// validated up front, applied atomically, recomputes derived totals through
// the calculator, and then notifies subscribers with an immutable copy.
// Persistence is a subscriber side-effect, decoupled from the computation.
package bill

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/fairsplit/fairsplit/internal/calculator"
	"github.com/fairsplit/fairsplit/internal/models"
)

// Validation errors. Mutations that fail leave the draft untouched and fire
// no notification.
var (
	ErrEmptyMemberName = errors.New("member name cannot be empty")
	ErrDuplicateMember = errors.New("member name already on the bill")
	ErrLastMember      = errors.New("cannot remove the last remaining member")
	ErrUnknownMember   = errors.New("member not on the bill")
	ErrEmptyItemName   = errors.New("item name cannot be empty")
	ErrInvalidPrice    = errors.New("item price must be a non-negative number")
	ErrInvalidQuantity = errors.New("item quantity must be at least 1")
	ErrUnknownItem     = errors.New("item not on the bill")
	ErrInvalidPercent  = errors.New("service charge percent must be non-negative")
)

// avatars is the pool of display symbols handed to new members.
var avatars = []string{
	"😎", "🔥", "🐱", "🐶", "🦊", "🐼", "🐵", "🐯", "🐨",
	"🦁", "🐸", "🐻", "🐰", "🦄", "👻", "🤖", "👽", "💀",
	"🍕", "🍔", "🍟", "🍣", "🍩", "🍿", "🥑", "🌮", "🌈",
}

func randomAvatar() string {
	return avatars[rand.Intn(len(avatars))]
}

// State is an immutable copy of the draft handed to subscribers and callers.
type State struct {
	Members []models.Member        `json:"members"`
	Items   []models.Item          `json:"items"`
	Config  models.SurchargeConfig `json:"config"`
	Totals  models.DerivedTotals   `json:"totals"`
}

// Subscriber receives the draft state after each successful mutation.
type Subscriber func(State)

// Draft is the editable bill. Safe for concurrent use.
type Draft struct {
	mu      sync.Mutex
	members []models.Member
	items   []models.Item
	cfg     models.SurchargeConfig
	subs    []Subscriber
}

// NewDraft creates a draft seeded with one member: the host. An empty host
// name falls back to "Host" so the bill always has a payable member.
func NewDraft(hostName string) *Draft {
	name := strings.TrimSpace(hostName)
	if name == "" {
		name = "Host"
	}
	return &Draft{
		members: []models.Member{{Name: name, Avatar: randomAvatar()}},
		cfg: models.SurchargeConfig{
			ServiceChargePercent: models.DefaultServiceChargePercent,
		},
	}
}

// Restore rebuilds a draft from a previously persisted state. Drafts with no
// members are re-seeded like NewDraft so the last-member invariant holds.
func Restore(s State) *Draft {
	d := &Draft{
		members: append([]models.Member(nil), s.Members...),
		items:   cloneItems(s.Items),
		cfg:     s.Config,
	}
	if len(d.members) == 0 {
		d.members = []models.Member{{Name: "Host", Avatar: randomAvatar()}}
	}
	return d
}

// Subscribe registers a subscriber for future mutations. Subscribers are
// invoked outside the draft lock, in registration order.
func (d *Draft) Subscribe(fn Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, fn)
}

// State returns an immutable copy of the draft with freshly computed totals.
func (d *Draft) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stateLocked()
}

func (d *Draft) stateLocked() State {
	members := append([]models.Member(nil), d.members...)
	items := cloneItems(d.items)
	return State{
		Members: members,
		Items:   items,
		Config:  d.cfg,
		Totals:  calculator.ComputeTotals(members, items, d.cfg),
	}
}

// commit runs a mutation under the lock and, when it succeeds, notifies
// subscribers with the resulting state.
func (d *Draft) commit(mutation func() error) (State, error) {
	d.mu.Lock()
	if err := mutation(); err != nil {
		d.mu.Unlock()
		return State{}, err
	}
	state := d.stateLocked()
	subs := append([]Subscriber(nil), d.subs...)
	d.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
	return state, nil
}

// AddMember adds a member with a random avatar. Names are trimmed and must
// be unique on the bill.
func (d *Draft) AddMember(name string) (State, error) {
	return d.commit(func() error {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return ErrEmptyMemberName
		}
		for _, m := range d.members {
			if m.Name == trimmed {
				return fmt.Errorf("%w: %s", ErrDuplicateMember, trimmed)
			}
		}
		d.members = append(d.members, models.Member{Name: trimmed, Avatar: randomAvatar()})
		return nil
	})
}

// RemoveMember deletes a member and prunes their name from every item's
// participant set. The last remaining member cannot be removed.
func (d *Draft) RemoveMember(name string) (State, error) {
	return d.commit(func() error {
		idx := -1
		for i, m := range d.members {
			if m.Name == name {
				idx = i
				break
			}
		}
		if idx == -1 {
			return fmt.Errorf("%w: %s", ErrUnknownMember, name)
		}
		if len(d.members) <= 1 {
			return ErrLastMember
		}
		d.members = append(d.members[:idx], d.members[idx+1:]...)

		for i := range d.items {
			kept := d.items[i].Participants[:0]
			for _, p := range d.items[i].Participants {
				if p != name {
					kept = append(kept, p)
				}
			}
			d.items[i].Participants = kept
		}
		return nil
	})
}

// AddItem appends qty sibling items sharing the same base name and price.
// For qty > 1 the display names carry " (k)" suffixes; participants start
// empty and are toggled afterwards.
func (d *Draft) AddItem(name string, price float64, qty int) (State, error) {
	return d.commit(func() error {
		clean := strings.TrimSpace(name)
		if clean == "" {
			return ErrEmptyItemName
		}
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			return ErrInvalidPrice
		}
		if qty < 1 {
			return ErrInvalidQuantity
		}
		for i := 0; i < qty; i++ {
			display := clean
			if qty > 1 {
				display = fmt.Sprintf("%s (%d)", clean, i+1)
			}
			d.items = append(d.items, models.Item{
				ID:           uuid.New().String(),
				Name:         display,
				BaseName:     clean,
				Price:        price,
				Participants: []string{},
			})
		}
		return nil
	})
}

// RenameItem changes an item's display name and re-derives its base name by
// stripping any " (n)" disambiguation suffix.
func (d *Draft) RenameItem(id, name string) (State, error) {
	return d.commit(func() error {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return ErrEmptyItemName
		}
		for i := range d.items {
			if d.items[i].ID == id {
				d.items[i].Name = trimmed
				d.items[i].BaseName = stripSuffix(trimmed)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	})
}

// RemoveItem deletes an item.
func (d *Draft) RemoveItem(id string) (State, error) {
	return d.commit(func() error {
		for i := range d.items {
			if d.items[i].ID == id {
				d.items = append(d.items[:i], d.items[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	})
}

// ToggleParticipant adds the member to the item's participant set, or
// removes them if already present.
func (d *Draft) ToggleParticipant(itemID, member string) (State, error) {
	return d.commit(func() error {
		if !d.hasMember(member) {
			return fmt.Errorf("%w: %s", ErrUnknownMember, member)
		}
		for i := range d.items {
			if d.items[i].ID != itemID {
				continue
			}
			for j, p := range d.items[i].Participants {
				if p == member {
					d.items[i].Participants = append(d.items[i].Participants[:j], d.items[i].Participants[j+1:]...)
					return nil
				}
			}
			d.items[i].Participants = append(d.items[i].Participants, member)
			return nil
		}
		return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	})
}

// ToggleAllParticipants assigns every member to the item, or clears the item
// if every member is already assigned.
func (d *Draft) ToggleAllParticipants(itemID string) (State, error) {
	return d.commit(func() error {
		for i := range d.items {
			if d.items[i].ID != itemID {
				continue
			}
			if len(d.items[i].Participants) == len(d.members) {
				d.items[i].Participants = []string{}
				return nil
			}
			all := make([]string, len(d.members))
			for j, m := range d.members {
				all[j] = m.Name
			}
			d.items[i].Participants = all
			return nil
		}
		return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	})
}

// SetSurcharge replaces the surcharge configuration.
func (d *Draft) SetSurcharge(cfg models.SurchargeConfig) (State, error) {
	return d.commit(func() error {
		if math.IsNaN(cfg.ServiceChargePercent) || cfg.ServiceChargePercent < 0 {
			return ErrInvalidPercent
		}
		d.cfg = cfg
		return nil
	})
}

// Reset clears the draft back to a single host member and default surcharge
// settings, keeping the host's name.
func (d *Draft) Reset() (State, error) {
	return d.commit(func() error {
		host := d.members[0]
		host.Avatar = randomAvatar()
		d.members = []models.Member{host}
		d.items = nil
		d.cfg = models.SurchargeConfig{ServiceChargePercent: models.DefaultServiceChargePercent}
		return nil
	})
}

func (d *Draft) hasMember(name string) bool {
	for _, m := range d.members {
		if m.Name == name {
			return true
		}
	}
	return false
}

func cloneItems(items []models.Item) []models.Item {
	out := make([]models.Item, len(items))
	for i, item := range items {
		item.Participants = append([]string(nil), item.Participants...)
		out[i] = item
	}
	return out
}
