package app

const (
	//ErrTypeViewer is reported when the window or the GL context cannot be set up
	ErrTypeViewer = "viewer_failed"
)

//ViewerOptions - window setup for Run
type ViewerOptions struct {
	Width  int
	Height int
	Title  string
}

func DefaultViewerOptions() ViewerOptions {
	return ViewerOptions{
		Width:  1280,
		Height: 720,
		Title:  "drape",
	}
}
