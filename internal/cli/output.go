package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mcoot/bodaform/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintln(o.errOut, string(data))
	} else {
		fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.out, string(data))
	} else {
		fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case LoginResult:
		o.printLoginResult(v)
	case []User:
		o.printUsers(v)
	case CreateUserResult:
		fmt.Fprintf(o.out, "Created %s (%s)\n", v.User.Username, v.User.Role)
	case model.Draft:
		o.printDraft(v)
	case []Progress:
		o.printOverview(v)
	case Review:
		o.printReview(v)
	case HealthResult:
		fmt.Fprintf(o.out, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// LoginResult response type (matches API)
type LoginResult struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

// User response type
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// CreateUserResult response type
type CreateUserResult struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

// SaveRequest is the body of a save
type SaveRequest struct {
	Username string      `json:"username"`
	Data     model.Draft `json:"data"`
}

// Progress is one overview row
type Progress struct {
	Username          string `json:"username"`
	Answered          int    `json:"answered"`
	Applicable        int    `json:"applicable"`
	Percent           int    `json:"percent"`
	CompletedSections int    `json:"completed_sections"`
}

// Review response type
type Review struct {
	Username   string          `json:"username"`
	Answered   int             `json:"answered"`
	Applicable int             `json:"applicable"`
	Percent    int             `json:"percent"`
	Sections   []ReviewSection `json:"sections"`
}

// ReviewSection response type
type ReviewSection struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Answered   int           `json:"answered"`
	Applicable int           `json:"applicable"`
	Complete   bool          `json:"complete"`
	Fields     []FieldAnswer `json:"fields"`
}

// FieldAnswer response type
type FieldAnswer struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Value      string `json:"value"`
	Applicable bool   `json:"applicable"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printLoginResult(l LoginResult) {
	fmt.Fprintf(o.out, "Logged in as %s (%s)\n", l.Username, l.Role)
}

func (o *Output) printUsers(users []User) {
	tw := tabwriter.NewWriter(o.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\n", u.Username, u.Role)
	}
	_ = tw.Flush()
}

// printDraft lists answers in catalog order, then any unknown keys
func (o *Output) printDraft(d model.Draft) {
	if len(d) == 0 {
		fmt.Fprintln(o.out, "(no answers yet)")
		return
	}

	seen := make(map[string]bool, len(d))
	for _, f := range model.AllFields() {
		if _, ok := d[f.Key]; !ok {
			continue
		}
		seen[f.Key] = true
		fmt.Fprintf(o.out, "%s: %s\n", f.Label, d.Display(f.Key))
	}

	for _, k := range d.Keys() {
		if !seen[k] {
			fmt.Fprintf(o.out, "%s: %v\n", k, d[k])
		}
	}
}

func (o *Output) printOverview(rows []Progress) {
	tw := tabwriter.NewWriter(o.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tANSWERED\tPROGRESS\tSECTIONS")
	for _, p := range rows {
		fmt.Fprintf(tw, "%s\t%d/%d\t%d%%\t%d/%d\n", p.Username, p.Answered, p.Applicable, p.Percent, p.CompletedSections, len(model.Sections))
	}
	_ = tw.Flush()
}

func (o *Output) printReview(r Review) {
	fmt.Fprintf(o.out, "%s: %d/%d (%d%%)\n", r.Username, r.Answered, r.Applicable, r.Percent)
	for _, sec := range r.Sections {
		mark := " "
		if sec.Complete {
			mark = "x"
		}
		fmt.Fprintf(o.out, "\n[%s] %s (%d/%d)\n", mark, sec.Title, sec.Answered, sec.Applicable)
		for _, f := range sec.Fields {
			if !f.Applicable {
				fmt.Fprintf(o.out, "    %s: %s (no aplica)\n", f.Label, f.Value)
				continue
			}
			fmt.Fprintf(o.out, "    %s: %s\n", f.Label, f.Value)
		}
	}
}
