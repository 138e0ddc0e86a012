package chat

// Row builds a keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}

// DataButton returns a callback button.
func DataButton(text, data string) Button {
	return Button{Text: text, Data: data}
}

// URLButton returns a link button.
func URLButton(text, url string) Button {
	return Button{Text: text, URL: url}
}

// Grid lays buttons out perRow to a row.
func Grid(buttons []Button, perRow int) Keyboard {
	if perRow <= 0 {
		perRow = 1
	}
	kb := make(Keyboard, 0, (len(buttons)+perRow-1)/perRow)
	for start := 0; start < len(buttons); start += perRow {
		end := min(start+perRow, len(buttons))
		kb = append(kb, append([]Button(nil), buttons[start:end]...))
	}
	return kb
}
