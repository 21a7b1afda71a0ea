// Package menu holds the DNS plan dialog: a static menu graph and the pure
// transition from an inbound button code to the next rendered view.
package menu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies the outcome of a transition.
type Kind string

const (
	// KindView renders a static node.
	KindView Kind = "view"
	// KindCountry renders the duration menu after a country pick.
	KindCountry Kind = "country"
	// KindPlan renders the plan summary.
	KindPlan Kind = "plan"
	// KindUnknown leaves the view untouched and acknowledges only.
	KindUnknown Kind = "unknown"
)

// UnknownNotice acknowledges codes no route accepts.
const UnknownNotice = "Unknown option."

var (
	// ErrUnknownDuration marks a duration code outside the price table.
	ErrUnknownDuration = errors.New("menu: unknown duration")
	// ErrNoPlans is returned when the catalog has an empty price table.
	ErrNoPlans = errors.New("menu: empty price table")
)

// DurationError reports a dur_ code whose value has no plan.
type DurationError struct {
	Value string
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("menu: no plan for duration %q", e.Value)
}

// Unwrap lets errors.Is match ErrUnknownDuration.
func (e *DurationError) Unwrap() error { return ErrUnknownDuration }

// Code is the stable error code used in handler logs.
func (e *DurationError) Code() string { return "unknown_duration" }

// Result is the outcome of one transition. A nil View means the displayed view stays.
type Result struct {
	Kind       Kind
	Route      string
	Node       string
	View       *View
	Notice     string
	Country    string
	Months     int
	ExpiryDays int
}

type handleFunc func(n *Navigator, payload string) (Result, error)

// route is one event-code shape. Exactly one of codes or prefix is set.
type route struct {
	name   string
	codes  []string
	prefix string
	handle handleFunc
}

func (r route) match(code string) (string, bool) {
	if r.prefix != "" {
		if strings.HasPrefix(code, r.prefix) {
			return strings.TrimPrefix(code, r.prefix), true
		}
		return "", false
	}
	for _, c := range r.codes {
		if c == code {
			return "", true
		}
	}
	return "", false
}

// Navigator maps event codes to views. It is immutable and safe for concurrent use.
type Navigator struct {
	graph  *Graph
	routes []route
	plans  map[int]Plan
}

// New builds the navigator for the catalog and fails if any choice code is unresolvable.
func New(c Catalog) (*Navigator, error) {
	if len(c.Plans) == 0 {
		return nil, ErrNoPlans
	}
	g, err := NewGraph(c.Nodes())
	if err != nil {
		return nil, err
	}
	n := &Navigator{
		graph: g,
		plans: make(map[int]Plan, len(c.Plans)),
	}
	for _, p := range c.Plans {
		n.plans[p.Months] = p
	}
	// Checked top to bottom; order mirrors the dialog flow.
	n.routes = []route{
		showNode("get_key", NodeMethod, CodeGetKey),
		showNode("my_keys", NodeMyKeys, CodeMyKeys),
		showNode("support", NodeSupport, CodeSupport),
		showNode("back_to_main", NodeMain, CodeBackToMain),
		showNode("android", NodeCountry, CodeAndroid, CodeCountry),
		{name: "speed", prefix: PrefixSpeed, handle: (*Navigator).selectCountry},
		{name: "duration", prefix: PrefixDuration, handle: (*Navigator).selectDuration},
		showNode("all_devices", NodeAllDevices, CodeAllDevices),
	}
	for _, r := range n.routes {
		if r.prefix != "" {
			continue
		}
		if _, err := r.handle(n, ""); err != nil {
			return nil, fmt.Errorf("route %s: %w", r.name, err)
		}
	}
	if err := g.Validate(n.Resolve); err != nil {
		return nil, err
	}
	return n, nil
}

// Default builds the navigator for DefaultCatalog.
func Default() (*Navigator, error) {
	return New(DefaultCatalog())
}

// Graph exposes the underlying node table.
func (n *Navigator) Graph() *Graph {
	return n.graph
}

// Start returns the welcome view sent on /start.
func (n *Navigator) Start() View {
	v, _ := n.graph.Render(NodeMain, "")
	return v
}

// Transition computes the result of a button press with the given code.
// Unknown codes are not errors; only a dur_ code outside the price table is.
func (n *Navigator) Transition(code string) (Result, error) {
	for _, r := range n.routes {
		payload, ok := r.match(code)
		if !ok {
			continue
		}
		if r.prefix != "" && payload == "" {
			break
		}
		res, err := r.handle(n, payload)
		if err != nil {
			return Result{Kind: KindUnknown, Route: r.name}, err
		}
		res.Route = r.name
		return res, nil
	}
	return Result{Kind: KindUnknown, Notice: UnknownNotice}, nil
}

// Resolve returns the node key the code leads to.
func (n *Navigator) Resolve(code string) (string, error) {
	res, err := n.Transition(code)
	if err != nil {
		return "", err
	}
	if res.Kind == KindUnknown {
		return "", fmt.Errorf("no route for %q", code)
	}
	return res.Node, nil
}

// Unreachable lists nodes that cannot be reached from the main menu.
func (n *Navigator) Unreachable() []string {
	return n.graph.Unreachable(NodeMain, n.Resolve)
}

func showNode(name, key string, codes ...string) route {
	return route{
		name:  name,
		codes: codes,
		handle: func(n *Navigator, _ string) (Result, error) {
			v, err := n.graph.Render(key, "")
			if err != nil {
				return Result{}, err
			}
			return Result{Kind: KindView, Node: key, View: &v}, nil
		},
	}
}

func (n *Navigator) selectCountry(payload string) (Result, error) {
	v, err := n.graph.Render(NodeDuration, "")
	if err != nil {
		return Result{}, err
	}
	country := strings.ToUpper(payload)
	return Result{
		Kind:    KindCountry,
		Node:    NodeDuration,
		View:    &v,
		Notice:  country + " selected",
		Country: country,
	}, nil
}

func (n *Navigator) selectDuration(payload string) (Result, error) {
	raw := strings.TrimSuffix(payload, durationSuffix)
	months, err := strconv.Atoi(raw)
	if err != nil {
		return Result{}, &DurationError{Value: payload}
	}
	plan, ok := n.plans[months]
	if !ok {
		return Result{}, &DurationError{Value: payload}
	}
	v, err := n.graph.Render(NodeSummary, summaryText(plan))
	if err != nil {
		return Result{}, err
	}
	return Result{
		Kind:       KindPlan,
		Node:       NodeSummary,
		View:       &v,
		Notice:     fmt.Sprintf("Selected %d month(s)!", months),
		Months:     months,
		ExpiryDays: months * daysPerPlanMonth,
	}, nil
}
