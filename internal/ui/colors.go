package ui

// Color accessors return the escape sequence of the active theme, or an empty
// string when colors are disabled.

// ColorRed returns the error color.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the success color.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning color.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary color.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorMagenta returns the info color.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan returns the primary color.
func ColorCyan() string { return GetCurrentTheme().Primary }

// ColorGrey returns the secondary color.
func ColorGrey() string { return GetCurrentTheme().Secondary }

// ColorBold returns the bold escape sequence.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline escape sequence.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// ColorReset clears all formatting.
func ColorReset() string { return GetCurrentTheme().Reset }
