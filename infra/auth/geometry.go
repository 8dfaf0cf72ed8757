package auth

// Frame is the outer bounds of the window that launches the popup.
type Frame struct {
	X, Y          int
	Width, Height int
}

// Geometry is the popup's placement.
type Geometry struct {
	Left, Top     int
	Width, Height int
}

const minPopupSide = 400

// PopupGeometry sizes the popup to 40% of the frame, never below 400 on a
// side, centered horizontally and a third of the way down.
func PopupGeometry(f Frame) Geometry {
	w := max(f.Width*2/5, minPopupSide)
	h := max(f.Height*2/5, minPopupSide)
	return Geometry{
		Left:   f.X + (f.Width-w)/2,
		Top:    f.Y + (f.Height-h)/3,
		Width:  w,
		Height: h,
	}
}
