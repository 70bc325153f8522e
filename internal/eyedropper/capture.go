package eyedropper

import (
	"context"
	"fmt"

	"cardforge/internal/visual"
	"cardforge/pkg/geometry"
)

// capture is an in-flight page snapshot. The session compares pointers to
// tell the current capture from a superseded one.
type capture struct {
	view geometry.Rect
}

// startCapture renders the visible page on its own goroutine and hands the
// result to apply. The overlay is excluded from the render.
func startCapture(ctx context.Context, opts Options, apply func(*capture, *Frame, error)) *capture {
	view := opts.Page.Viewport()
	c := &capture{view: view}
	root := opts.Page.Root()

	snapOpts := visual.SnapshotOptions{
		PixelRatio: opts.PixelRatio,
		Origin:     view.TopLeft(),
		Width:      view.Width,
		Height:     view.Height,
	}
	if opts.Overlay != nil {
		snapOpts.Exclude = opts.Overlay.IsOverlay
	}

	go func() {
		img, err := opts.Snapshotter.RenderToImage(ctx, root, snapOpts)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err == nil && img == nil {
			err = fmt.Errorf("failed to capture page: empty image")
		}
		if err != nil {
			apply(c, nil, err)
			return
		}
		apply(c, &Frame{Image: img, Origin: view.TopLeft(), Ratio: opts.PixelRatio}, nil)
	}()
	return c
}
