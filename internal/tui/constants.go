package tui

const (
	// Input Dimensions
	InputWidth = 50

	// Popup sizes
	PopupWidth        = 80
	InputPopupHeight  = 11
	PickerPopupHeight = 20
	PickerHeight      = 12
	MenuWidth         = 44
	DetailWidth       = 90

	// Layout Offsets and Padding
	DefaultPaddingX = 1
	DefaultPaddingY = 0
	PopupPaddingY   = 1
	PopupPaddingX   = 3

	// Browse list size before the first WindowSizeMsg
	DefaultListWidth  = 80
	DefaultListHeight = 20
)
