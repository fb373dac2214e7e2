package effects

import (
	"fmt"
	"testing"
	"time"

	"github.com/joeblew999/deckshow/internal/presenter"
	"github.com/stretchr/testify/assert"
)

// fakeDOM counts elements per selector and records animations
type fakeDOM struct {
	elements map[string]int
	log      []string
}

func (f *fakeDOM) ClearAnimations() { f.log = append(f.log, "clear") }

func (f *fakeDOM) Count(selector string) int { return f.elements[selector] }

func (f *fakeDOM) Animate(selector string, index int, animation string) {
	f.log = append(f.log, fmt.Sprintf("%s[%d] %s", selector, index, animation))
}

type fakeCharts struct {
	dom *fakeDOM
}

func (c fakeCharts) Refresh(id string) { c.dom.log = append(c.dom.log, "chart "+id) }

func TestDispatchTitleSlide(t *testing.T) {
	dom := &fakeDOM{elements: map[string]int{".main-title": 1, ".subtitle": 2, ".author-info": 1}}
	sched := presenter.NewManualScheduler()
	d := NewDispatcher(DefaultTable(), dom, fakeCharts{dom}, sched, nil)

	d.Dispatch(1)
	assert.Equal(t, []string{
		"clear",
		".main-title[0] fadeInDown",
		".subtitle[0] fadeInUp",
	}, dom.log)

	sched.Advance(500 * time.Millisecond)
	assert.Equal(t, ".author-info[0] fadeIn", dom.log[len(dom.log)-1])
}

func TestDispatchStaggers(t *testing.T) {
	dom := &fakeDOM{elements: map[string]int{".finding": 3}}
	sched := presenter.NewManualScheduler()
	d := NewDispatcher(DefaultTable(), dom, nil, sched, nil)

	d.Dispatch(12)
	assert.Equal(t, []string{"clear", ".finding[0] fadeInUp"}, dom.log)

	sched.Advance(150 * time.Millisecond)
	sched.Advance(149 * time.Millisecond)
	assert.Len(t, dom.log, 3)
	sched.Advance(time.Millisecond)
	assert.Equal(t, ".finding[2] fadeInUp", dom.log[3])
}

func TestDispatchRefreshesCharts(t *testing.T) {
	dom := &fakeDOM{elements: map[string]int{".metric-card": 1}}
	d := NewDispatcher(DefaultTable(), dom, fakeCharts{dom}, presenter.NewManualScheduler(), nil)

	d.Dispatch(11)
	assert.Equal(t, []string{
		"clear",
		"chart steamChart",
		"chart steamChart2",
		".metric-card[0] bounceIn",
	}, dom.log)

	dom.log = nil
	d.Dispatch(3)
	assert.Equal(t, []string{"clear", "chart accessChart"}, dom.log)
}

func TestDispatchCancelsPendingReveals(t *testing.T) {
	dom := &fakeDOM{elements: map[string]int{".quote-card": 4}}
	sched := presenter.NewManualScheduler()
	d := NewDispatcher(DefaultTable(), dom, nil, sched, nil)

	d.Dispatch(13)
	d.Dispatch(2)
	sched.Advance(time.Second)
	assert.Equal(t, []string{"clear", ".quote-card[0] fadeIn", "clear"}, dom.log)
	assert.Zero(t, sched.Pending())
}

func TestDispatchWithoutCollaborators(t *testing.T) {
	d := NewDispatcher(DefaultTable(), nil, nil, nil, nil)
	assert.NotPanics(t, func() {
		d.Dispatch(3)
		d.Dispatch(11)
		d.Dispatch(99)
	})
}

func TestSingleRevealTouchesFirstMatchOnly(t *testing.T) {
	dom := &fakeDOM{elements: map[string]int{".barrier-section": 3}}
	d := NewDispatcher(Table{3: {Reveal{Selector: ".barrier-section", Animation: "fadeInLeft"}}}, dom, nil, nil, nil)

	d.Dispatch(3)
	assert.Equal(t, []string{"clear", ".barrier-section[0] fadeInLeft"}, dom.log)
}

func TestDefaultTableSlides(t *testing.T) {
	assert.Equal(t, []int{1, 3, 6, 7, 8, 9, 11, 12, 13, 15}, DefaultTable().Slides())
}

func TestTableSelectors(t *testing.T) {
	table := Table{
		1: {Reveal{Selector: ".b"}, RefreshChart{ID: "x"}},
		2: {Reveal{Selector: ".a"}, Reveal{Selector: ".b"}},
	}
	assert.Equal(t, []string{".a", ".b"}, table.Selectors())
	assert.Len(t, DefaultTable().Selectors(), 13)
}
