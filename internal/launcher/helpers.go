package launcher

import (
	"time"

	"github.com/guilherme-santos/zoomlauncher/internal"
)

func formatWindow(w internal.Window) string {
	return w.From.In(time.Local).Format("02 Jan 06 15:04") + " - " + w.To.In(time.Local).Format("15:04")
}
