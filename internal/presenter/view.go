package presenter

// View receives the visual side effects of the presenter. Slide numbers are
// 1-based. Calls arrive while the presenter holds its lock, so a View must
// not call back into the Presenter synchronously.
type View interface {
	// Deactivate hides slide n
	Deactivate(n int)
	// Activate shows slide n and scrolls it back to the top
	Activate(n int)
	SetCounter(current, total int)
	SetControls(prevEnabled, nextEnabled bool)
	SetTimer(display string, urgency Urgency)
	TimerExpired()
	SetPresentationMode(on bool)
	SetChromeVisible(visible bool)
	// SetFullscreen asks the platform to enter or leave fullscreen.
	// An error means the request was rejected.
	SetFullscreen(on bool) error
	SetTheme(name string, vars map[string]string)
	ShowHelp(text string)
}

// NopView discards everything; fullscreen requests always succeed
type NopView struct{}

func (NopView) Deactivate(int)                     {}
func (NopView) Activate(int)                       {}
func (NopView) SetCounter(int, int)                {}
func (NopView) SetControls(bool, bool)             {}
func (NopView) SetTimer(string, Urgency)           {}
func (NopView) TimerExpired()                      {}
func (NopView) SetPresentationMode(bool)           {}
func (NopView) SetChromeVisible(bool)              {}
func (NopView) SetFullscreen(bool) error           { return nil }
func (NopView) SetTheme(string, map[string]string) {}
func (NopView) ShowHelp(string)                    {}

// MultiView fans every call out to several views in order. The first
// fullscreen rejection is returned.
type MultiView []View

func (m MultiView) Deactivate(n int) {
	for _, v := range m {
		v.Deactivate(n)
	}
}

func (m MultiView) Activate(n int) {
	for _, v := range m {
		v.Activate(n)
	}
}

func (m MultiView) SetCounter(current, total int) {
	for _, v := range m {
		v.SetCounter(current, total)
	}
}

func (m MultiView) SetControls(prev, next bool) {
	for _, v := range m {
		v.SetControls(prev, next)
	}
}

func (m MultiView) SetTimer(display string, urgency Urgency) {
	for _, v := range m {
		v.SetTimer(display, urgency)
	}
}

func (m MultiView) TimerExpired() {
	for _, v := range m {
		v.TimerExpired()
	}
}

func (m MultiView) SetPresentationMode(on bool) {
	for _, v := range m {
		v.SetPresentationMode(on)
	}
}

func (m MultiView) SetChromeVisible(visible bool) {
	for _, v := range m {
		v.SetChromeVisible(visible)
	}
}

func (m MultiView) SetFullscreen(on bool) error {
	var first error
	for _, v := range m {
		if err := v.SetFullscreen(on); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiView) SetTheme(name string, vars map[string]string) {
	for _, v := range m {
		v.SetTheme(name, vars)
	}
}

func (m MultiView) ShowHelp(text string) {
	for _, v := range m {
		v.ShowHelp(text)
	}
}
