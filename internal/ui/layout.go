package ui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"github.com/adriangreen/todo-tui/internal/todo"
)

const (
	headerHeight    = 2 // title line and search line
	statusBarHeight = 1
	tableChrome     = 4 // border and column header
	idColumnWidth   = 8
	statusColWidth  = 8
	minTextColumn   = 10
)

// Column titles, left to right.
const (
	ColumnID          = "TASK ID"
	ColumnTitle       = "TITLE"
	ColumnDescription = "DESCRIPTION"
	ColumnStatus      = "STATUS"
)

// tableColumns splits width between the columns. Title gets three fifths of
// the free space, description the rest.
func tableColumns(width int) []table.Column {
	// border plus one cell of padding on each side of every column
	free := width - 2 - 4*2 - idColumnWidth - statusColWidth
	if free < 2*minTextColumn {
		free = 2 * minTextColumn
	}
	title := free * 3 / 5
	desc := free - title

	return []table.Column{
		{Title: ColumnID, Width: idColumnWidth},
		{Title: ColumnTitle, Width: title},
		{Title: ColumnDescription, Width: desc},
		{Title: ColumnStatus, Width: statusColWidth},
	}
}

// tableHeight is the number of body rows that fit.
func tableHeight(height, extra int) int {
	h := height - headerHeight - statusBarHeight - tableChrome - extra
	if h < 3 {
		h = 3
	}
	return h
}

func taskRow(t todo.Task) table.Row {
	return table.Row{strconv.Itoa(t.ID), t.Title, t.Description, t.Status()}
}

func taskRows(tasks []todo.Task) []table.Row {
	rows := make([]table.Row, len(tasks))
	for i, t := range tasks {
		rows[i] = taskRow(t)
	}
	return rows
}
