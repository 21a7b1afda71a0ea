package menu

import "fmt"

// Node keys of the built-in menu.
const (
	NodeMain       = "main"
	NodeMethod     = "method"
	NodeMyKeys     = "my_keys"
	NodeSupport    = "support"
	NodeCountry    = "country"
	NodeDuration   = "duration"
	NodeSummary    = "summary"
	NodeAllDevices = "all_devices"
)

// Event codes emitted by the built-in menu buttons.
const (
	CodeGetKey       = "menu_1"
	CodeMyKeys       = "menu_mykeys"
	CodeSupport      = "menu_support"
	CodeBackToMain   = "back_to_main"
	CodeAndroid      = "sub_android"
	CodeCountry      = "sub_country"
	CodeAllDevices   = "sub_alldevices"
	PrefixSpeed      = "speed_"
	PrefixDuration   = "dur_"
	durationSuffix   = "m"
	daysPerPlanMonth = 30
)

// WelcomeText greets the user on /start and when returning to the main menu.
const WelcomeText = "Dominate the competition with a DNS server engineered for gaming. " +
	"Experience lower ping, reduced packet loss, and a more stable connection. " +
	"Our global network provides a faster, more responsive gaming experience " +
	"while blocking malicious sites. Set up in minutes and feel the difference.\n\n" +
	"Choose your preferred DNS setup below"

// KeyEndpoint is the DoH endpoint shown with a generated key.
const KeyEndpoint = "https://dns.royalgaming.com/dns-query"

// Plan is one entry of the closed duration price table.
type Plan struct {
	Months int
	Price  string
}

// Country is a selectable high-speed location.
type Country struct {
	Label string
	Code  string
}

// Catalog is the literal description of the menu.
type Catalog struct {
	Welcome   string
	Plans     []Plan
	Countries []Country
}

// DefaultCatalog returns the production menu.
func DefaultCatalog() Catalog {
	return Catalog{
		Welcome: WelcomeText,
		Plans: []Plan{
			{Months: 1, Price: "$1.00 ($1.00/mo) Entry plan"},
			{Months: 2, Price: "$1.80 ($0.90/mo) Save 10%"},
			{Months: 3, Price: "$2.50 ($0.83/mo) Most popular"},
			{Months: 6, Price: "$4.00 ($0.67/mo) Long-term"},
			{Months: 12, Price: "$7.00 ($0.58/mo) Best value"},
		},
		Countries: []Country{
			{Label: "Germany", Code: "ger"},
			{Label: "Sweden", Code: "sweden"},
			{Label: "Finland", Code: "fin"},
			{Label: "Italy", Code: "it"},
			{Label: "India", Code: "in"},
			{Label: "UAE", Code: "uae"},
			{Label: "UK", Code: "uk"},
			{Label: "USA", Code: "usa"},
		},
	}
}

// Nodes expands the catalog into menu nodes.
func (c Catalog) Nodes() []Node {
	return []Node{
		{
			Key:  NodeMain,
			Text: c.Welcome,
			Rows: [][]Choice{
				{{Label: "🧭 Get DNS Key", Code: CodeGetKey}},
				{{Label: "🔑 My Keys", Code: CodeMyKeys}},
				{{Label: "📞 Support", Code: CodeSupport}},
			},
		},
		{
			Key:  NodeMethod,
			Text: "Choose your DNS setup method:",
			Rows: [][]Choice{
				{{Label: "🤖 Android only", Code: CodeAndroid}},
				{{Label: "💻 All Devices", Code: CodeAllDevices}},
				{{Label: "⬅️ Go Back", Code: CodeBackToMain}},
			},
		},
		{
			Key:  NodeMyKeys,
			Text: "Here are your active DNS keys:\n\n_(Coming soon...)_",
		},
		{
			Key:  NodeSupport,
			Text: "Need help?\n\nContact support: @YourSupportUsername\nOr email: support@royaldns.com",
		},
		{
			Key:  NodeCountry,
			Text: "Choose a high-speed location for fast and secure internet:",
			Rows: append(c.countryRows(), []Choice{{Label: "⬅️ Go Back", Code: CodeGetKey}}),
		},
		{
			Key:    NodeDuration,
			Text:   "Select your subscription duration\n\nBest value plans for high-speed DNS:",
			Rows:   append(c.planRows(), []Choice{{Label: "⬅️ Go Back", Code: CodeCountry}}),
			Format: FormatMarkdown,
		},
		{
			Key: NodeSummary,
			Rows: [][]Choice{
				{{Label: "Back to Duration", Code: CodeCountry}},
				{{Label: "Main Menu", Code: CodeBackToMain}},
			},
			Format: FormatMarkdown,
		},
		{
			Key: NodeAllDevices,
			Text: "*IP-Based DNS (All Devices)*\n\n" +
				"Primary: `103.194.24.1`\n" +
				"Secondary: `103.194.24.2`\n\n" +
				"Works on PC, consoles, iOS, Android, routers.",
			Rows:   [][]Choice{{{Label: "Back", Code: CodeGetKey}}},
			Format: FormatMarkdown,
		},
	}
}

// countryRows lays countries out two per row.
func (c Catalog) countryRows() [][]Choice {
	var rows [][]Choice
	for i := 0; i < len(c.Countries); i += 2 {
		end := min(i+2, len(c.Countries))
		row := make([]Choice, 0, 2)
		for _, country := range c.Countries[i:end] {
			row = append(row, Choice{Label: country.Label, Code: PrefixSpeed + country.Code})
		}
		rows = append(rows, row)
	}
	return rows
}

func (c Catalog) planRows() [][]Choice {
	rows := make([][]Choice, 0, len(c.Plans))
	for _, p := range c.Plans {
		rows = append(rows, []Choice{{
			Label: fmt.Sprintf("%d %s - %s", p.Months, monthUnit(p.Months), p.Price),
			Code:  fmt.Sprintf("%s%d%s", PrefixDuration, p.Months, durationSuffix),
		}})
	}
	return rows
}

func monthUnit(months int) string {
	if months == 1 {
		return "Month"
	}
	return "Months"
}

func summaryText(p Plan) string {
	return fmt.Sprintf("You selected *%d %s* plan for *%s*!\n\n", p.Months, monthUnit(p.Months), p.Price) +
		"Generating your DNS key...\n\n" +
		"`" + KeyEndpoint + "` (Intra App)\n\n" +
		fmt.Sprintf("Key will expire in %d days.", p.Months*daysPerPlanMonth)
}
