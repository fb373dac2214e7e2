package mcp

import "github.com/mark3labs/mcp-go/mcp"

var deckOverviewTool = mcp.NewTool("deck_overview",
	mcp.WithDescription("Get the deck title, slide titles, sections, themes and the current presenter state."),
)

var navigateTool = mcp.NewTool("navigate",
	mcp.WithDescription("Move through the deck. next and previous wrap around at the ends."),
	mcp.WithString("action",
		mcp.Required(),
		mcp.Description("Navigation action"),
		mcp.Enum("next", "previous", "first", "last", "goto"),
	),
	mcp.WithNumber("slide",
		mcp.Description("1-based slide number, required for goto"),
	),
)

var jumpToSectionTool = mcp.NewTool("jump_to_section",
	mcp.WithDescription("Show the first slide of a named section, such as results or methodology."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Section name"),
	),
)

var timerTool = mcp.NewTool("timer",
	mcp.WithDescription("Control the presentation countdown."),
	mcp.WithString("action",
		mcp.Required(),
		mcp.Description("Timer action"),
		mcp.Enum("start", "stop", "reset", "toggle", "duration", "status"),
	),
	mcp.WithNumber("minutes",
		mcp.Description("Countdown length in minutes, required for duration"),
	),
)

var setThemeTool = mcp.NewTool("set_theme",
	mcp.WithDescription("Apply a named color theme."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Theme name"),
	),
)

var listBookmarksTool = mcp.NewTool("list_bookmarks",
	mcp.WithDescription("List bookmarked slides with their labels."),
)

var addBookmarkTool = mcp.NewTool("add_bookmark",
	mcp.WithDescription("Bookmark a slide. An existing bookmark on the slide is relabeled."),
	mcp.WithNumber("slide",
		mcp.Required(),
		mcp.Description("1-based slide number"),
	),
	mcp.WithString("label",
		mcp.Description("Bookmark label"),
	),
)

var removeBookmarkTool = mcp.NewTool("remove_bookmark",
	mcp.WithDescription("Remove the bookmark of a slide."),
	mcp.WithNumber("slide",
		mcp.Required(),
		mcp.Description("1-based slide number"),
	),
)

var getNoteTool = mcp.NewTool("get_note",
	mcp.WithDescription("Get the speaker note of a slide, as markdown."),
	mcp.WithNumber("slide",
		mcp.Description("1-based slide number (default: current slide)"),
	),
)

var addNoteTool = mcp.NewTool("add_note",
	mcp.WithDescription("Set the speaker note of a slide. Markdown is allowed."),
	mcp.WithNumber("slide",
		mcp.Required(),
		mcp.Description("1-based slide number"),
	),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Note text"),
	),
)

var getStatsTool = mcp.NewTool("get_stats",
	mcp.WithDescription("Get session statistics: visits and time per slide, total minutes and the most visited slide."),
)

var toggleRehearsalTool = mcp.NewTool("toggle_rehearsal",
	mcp.WithDescription("Start or finish a timed rehearsal attempt and return the rehearsal summary."),
)

var getSlideTool = mcp.NewTool("get_slide",
	mcp.WithDescription("Get the title and SVG markup of a slide."),
	mcp.WithNumber("slide",
		mcp.Required(),
		mcp.Description("1-based slide number"),
	),
)
