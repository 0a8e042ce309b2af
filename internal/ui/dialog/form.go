package dialog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FormFieldType represents the supported input types.
type FormFieldType int

const (
	FormFieldTypeText FormFieldType = iota
	FormFieldTypeSelect
)

// FormField describes a row in the dialog form.
type FormField struct {
	ID          string
	Label       string
	Type        FormFieldType
	Placeholder string
	// Value seeds a text field.
	Value string
	// Options and Selected drive a select field.
	Options  []string
	Selected int

	input textinput.Model
}

// TextField builds a single-line input.
func TextField(id, label, placeholder, value string) FormField {
	return FormField{ID: id, Label: label, Type: FormFieldTypeText, Placeholder: placeholder, Value: value}
}

// SelectField builds a choice cycled with the arrow keys.
func SelectField(id, label string, options []string, selected int) FormField {
	if selected < 0 || selected >= len(options) {
		selected = 0
	}
	return FormField{ID: id, Label: label, Type: FormFieldTypeSelect, Options: options, Selected: selected}
}

// FormValues holds submitted values keyed by field id. Text fields map to
// their trimmed text, select fields to the chosen option.
type FormValues map[string]string

// FormChangeHandler observes edits as they happen.
type FormChangeHandler func(fieldID, value string)

// FormDialog is a form with fields followed by a row of buttons. Tab moves
// between fields and buttons; Enter on the confirm button submits.
type FormDialog struct {
	BaseDialog

	fields   []FormField
	buttons  []string
	confirm  string
	focus    int
	onChange FormChangeHandler
	result   FormValues
}

// NewFormDialog builds a form. confirm names the button that submits; every
// other button cancels.
func NewFormDialog(title string, fields []FormField, buttons []string, confirm string) *FormDialog {
	if len(buttons) == 0 {
		buttons = []string{"Cancel", "Save"}
		confirm = "Save"
	}

	d := &FormDialog{
		BaseDialog: NewBaseDialog(title, 56),
		fields:     make([]FormField, len(fields)),
		buttons:    append([]string(nil), buttons...),
		confirm:    confirm,
	}
	d.SetFooterHints(
		ShortcutHint{Key: "tab", Label: "next"},
		ShortcutHint{Key: "←/→", Label: "change"},
		ShortcutHint{Key: "enter", Label: "save"},
		ShortcutHint{Key: "esc", Label: "cancel"},
	)

	for i, f := range fields {
		if f.Type == FormFieldTypeText {
			in := textinput.New()
			in.Prompt = ""
			in.Placeholder = f.Placeholder
			in.CharLimit = 200
			in.SetValue(f.Value)
			f.input = in
		}
		d.fields[i] = f
	}
	d.setFocus(0)
	return d
}

// OnChange registers a handler called after every field edit.
func (d *FormDialog) OnChange(h FormChangeHandler) {
	d.onChange = h
}

// Init starts the cursor blinking in the focused input.
func (d *FormDialog) Init() tea.Cmd {
	return textinput.Blink
}

// SetWidth resizes the dialog and its inputs.
func (d *FormDialog) SetWidth(width int) {
	d.BaseDialog.SetWidth(width)
	for i := range d.fields {
		if d.fields[i].Type == FormFieldTypeText {
			d.fields[i].input.Width = d.inputWidth()
		}
	}
}

func (d *FormDialog) inputWidth() int {
	w := d.Width() - 8
	if w < 10 {
		w = 10
	}
	return w
}

// HandleKey routes keyboard input to the focused element.
func (d *FormDialog) HandleKey(msg tea.KeyMsg) (DialogResult, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return DialogResultCancel, nil
	case "tab":
		d.setFocus(d.focus + 1)
		return DialogResultNone, nil
	case "shift+tab":
		d.setFocus(d.focus - 1)
		return DialogResultNone, nil
	}

	if d.focus < len(d.fields) {
		return d.handleFieldKey(&d.fields[d.focus], msg)
	}
	return d.handleButtonKey(msg)
}

func (d *FormDialog) handleFieldKey(f *FormField, msg tea.KeyMsg) (DialogResult, tea.Cmd) {
	switch f.Type {
	case FormFieldTypeText:
		if msg.Type == tea.KeyEnter {
			return d.submit()
		}
		var cmd tea.Cmd
		before := f.input.Value()
		f.input, cmd = f.input.Update(msg)
		if v := f.input.Value(); v != before {
			d.changed(f.ID, v)
		}
		return DialogResultNone, cmd

	case FormFieldTypeSelect:
		if len(f.Options) == 0 {
			return DialogResultNone, nil
		}
		switch msg.String() {
		case "left", "up", "h", "k":
			f.Selected = (f.Selected - 1 + len(f.Options)) % len(f.Options)
		case "right", "down", "l", "j", " ":
			f.Selected = (f.Selected + 1) % len(f.Options)
		case "enter":
			return d.submit()
		default:
			return DialogResultNone, nil
		}
		d.changed(f.ID, f.Options[f.Selected])
	}
	return DialogResultNone, nil
}

func (d *FormDialog) handleButtonKey(msg tea.KeyMsg) (DialogResult, tea.Cmd) {
	n := len(d.fields)
	switch msg.String() {
	case "left", "h":
		d.setFocus(n + (d.focus-n-1+len(d.buttons))%len(d.buttons))
	case "right", "l":
		d.setFocus(n + (d.focus-n+1)%len(d.buttons))
	case "enter", " ":
		if d.buttons[d.focus-n] == d.confirm {
			return d.submit()
		}
		return DialogResultCancel, nil
	}
	return DialogResultNone, nil
}

func (d *FormDialog) submit() (DialogResult, tea.Cmd) {
	d.result = d.Values()
	return DialogResultConfirm, nil
}

func (d *FormDialog) changed(id, value string) {
	if d.onChange != nil {
		d.onChange(id, value)
	}
}

// setFocus wraps i over fields and buttons and moves the text cursor.
func (d *FormDialog) setFocus(i int) {
	total := len(d.fields) + len(d.buttons)
	if total == 0 {
		return
	}
	d.focus = (i%total + total) % total
	for j := range d.fields {
		if d.fields[j].Type != FormFieldTypeText {
			continue
		}
		if j == d.focus {
			d.fields[j].input.Focus()
		} else {
			d.fields[j].input.Blur()
		}
	}
}

// Focused returns the index of the focused element; buttons follow fields.
func (d *FormDialog) Focused() int {
	return d.focus
}

// Values collects the current field values.
func (d *FormDialog) Values() FormValues {
	values := make(FormValues, len(d.fields))
	for i, f := range d.fields {
		id := f.ID
		if id == "" {
			id = fmt.Sprintf("field_%d", i)
		}
		switch f.Type {
		case FormFieldTypeText:
			values[id] = strings.TrimSpace(f.input.Value())
		case FormFieldTypeSelect:
			if len(f.Options) > 0 {
				values[id] = f.Options[f.Selected]
			}
		}
	}
	return values
}

// DialogResultValue implements ResultProvider.
func (d *FormDialog) DialogResultValue() any {
	return d.result
}

// View renders the dialog contents.
func (d *FormDialog) View() string {
	rows := make([]string, 0, len(d.fields)*2+1)
	labelStyle := lipgloss.NewStyle().Bold(true)
	for i, f := range d.fields {
		label := f.Label
		if i == d.focus {
			label = "› " + label
		} else {
			label = "  " + label
		}
		rows = append(rows, labelStyle.Render(label), "  "+d.renderValue(i))
	}
	rows = append(rows, "", d.renderButtons())
	return d.RenderBorder(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (d *FormDialog) renderValue(i int) string {
	f := d.fields[i]
	if f.Type == FormFieldTypeText {
		return f.input.View()
	}

	parts := make([]string, len(f.Options))
	for j, opt := range f.Options {
		marker := "( )"
		if j == f.Selected {
			marker = "(•)"
		}
		parts[j] = marker + " " + opt
	}
	out := strings.Join(parts, "  ")
	if i == d.focus {
		out = lipgloss.NewStyle().Foreground(d.Style.ButtonColor).Render(out)
	}
	return out
}

func (d *FormDialog) renderButtons() string {
	rendered := make([]string, len(d.buttons))
	for i, b := range d.buttons {
		style := lipgloss.NewStyle().Padding(0, 2)
		if len(d.fields)+i == d.focus {
			style = style.Background(d.Style.ButtonColor).Foreground(d.Style.ButtonTextColor).Bold(true)
		} else {
			style = style.Foreground(d.Style.ButtonColor)
		}
		rendered[i] = style.Render(b)
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, rendered...)
}
