package filter

import "github.com/tonefx/tonefx"

func fullRect(w, h int) tonefx.Rect { return tonefx.NewRect(0, 0, w, h) }
