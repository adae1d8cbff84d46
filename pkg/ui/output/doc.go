// Package output writes lnedit's user-facing messages.
//
// Messages are plain strings with a semantic style name (Success, Warning,
// LinkName, ...). The Printer looks the style up in the styles registry and
// applies it only when the destination is a color-capable terminal, or
// when color was forced through configuration.
//
//	p := output.NewPrinter(os.Stdout, "auto")
//	p.Println("Success", "18W28tmp -> .userroot/tmp/2018/18W28/timeutil")
package output
