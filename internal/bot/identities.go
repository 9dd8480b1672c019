package bot

import "fmt"

// Name returns the display name of the i-th AI seat of a table.
func Name(i int) string {
	return fmt.Sprintf("ai %d", i)
}
