package scenario

import (
	"strings"

	"github.com/vango-dev/reactive/pkg/reactive"
)

func init() {
	register(&Scenario{
		Name:        "chain",
		Description: "signals feeding a computed feeding an effect",
		build:       buildChain,
	})
	register(&Scenario{
		Name:        "dynamic",
		Description: "an effect whose dependencies follow a condition",
		build:       buildDynamic,
	})
	register(&Scenario{
		Name:        "cleanup",
		Description: "effect cleanups running before re-runs and on dispose",
		build:       buildCleanup,
	})
	register(&Scenario{
		Name:        "cascade",
		Description: "nested writes propagating depth-first, and a skipped re-entrant run",
		build:       buildCascade,
	})
}

func buildChain(in reactive.Option, log *Log) []Step {
	width := reactive.NewSignal(100, in, reactive.WithName("width"))
	scale := reactive.NewSignal(2, in, reactive.WithName("scale"))
	area := reactive.NewComputed(func() int {
		return width.Get() * scale.Get()
	}, in, reactive.WithName("area"))
	reactive.CreateEffect(func() reactive.Cleanup {
		log.Printf("area = %d", area.Get())
		return nil
	}, in, reactive.WithName("print-area"))

	return []Step{
		{"width.Set(200)", func() { width.Set(200) }},
		{"scale.Set(3)", func() { scale.Set(3) }},
		{"width.Set(200) again", func() { width.Set(200) }},
		{"width.Set(100)", func() { width.Set(100) }},
	}
}

func buildDynamic(in reactive.Option, log *Log) []Step {
	showRuler := reactive.NewSignal(false, in, reactive.WithName("showRuler"))
	cursor := reactive.NewSignal(0, in, reactive.WithName("cursor"))
	title := reactive.NewSignal("untitled", in, reactive.WithName("title"))
	reactive.CreateEffect(func() reactive.Cleanup {
		if showRuler.Get() {
			log.Printf("status: %s | col %d", title.Get(), cursor.Get())
		} else {
			log.Printf("status: %s", title.Get())
		}
		return nil
	}, in, reactive.WithName("status-bar"))

	return []Step{
		{"cursor.Set(4) while hidden", func() { cursor.Set(4) }},
		{"showRuler.Set(true)", func() { showRuler.Set(true) }},
		{"cursor.Set(9)", func() { cursor.Set(9) }},
		{"showRuler.Set(false)", func() { showRuler.Set(false) }},
		{"cursor.Set(12) while hidden", func() { cursor.Set(12) }},
		{"title.Set(notes.md)", func() { title.Set("notes.md") }},
	}
}

func buildCleanup(in reactive.Option, log *Log) []Step {
	editing := reactive.NewSignal(false, in, reactive.WithName("isEditing"))
	var session *reactive.Effect
	session = reactive.CreateEffect(func() reactive.Cleanup {
		if !editing.Get() {
			return nil
		}
		log.Printf("start")
		return func() { log.Printf("stop") }
	}, in, reactive.WithName("edit-session"))

	return []Step{
		{"isEditing.Set(true)", func() { editing.Set(true) }},
		{"isEditing.Set(false)", func() { editing.Set(false) }},
		{"isEditing.Set(true)", func() { editing.Set(true) }},
		{"dispose", func() {
			session.Dispose()
			session.Dispose()
		}},
		{"isEditing.Set(false) after dispose", func() { editing.Set(false) }},
	}
}

func buildCascade(in reactive.Option, log *Log) []Step {
	text := reactive.NewSignal("", in, reactive.WithName("text"))
	selection := reactive.NewSignal(0, in, reactive.WithName("selection"))
	words := reactive.NewComputed(func() int {
		return len(strings.Fields(text.Get()))
	}, in, reactive.WithName("wordCount"))

	reactive.CreateEffect(func() reactive.Cleanup {
		n := len(text.Get())
		if selection.Peek() > n {
			log.Printf("clamp selection to %d", n)
			selection.Set(n)
			log.Printf("clamp done")
		}
		return nil
	}, in, reactive.WithName("clamp-selection"))
	reactive.CreateEffect(func() reactive.Cleanup {
		log.Printf("caret at %d", selection.Get())
		return nil
	}, in, reactive.WithName("render-caret"))
	reactive.CreateEffect(func() reactive.Cleanup {
		log.Printf("%d words", words.Get())
		return nil
	}, in, reactive.WithName("render-count"))

	autosaves := reactive.NewSignal(0, in, reactive.WithName("autosaves"))
	reactive.CreateEffect(func() reactive.Cleanup {
		n := autosaves.Get()
		if n > 0 && n < 3 {
			// Writes its own dependency; the nested run is skipped.
			autosaves.Set(n + 1)
		}
		log.Printf("autosave #%d", n)
		return nil
	}, in, reactive.WithName("autosave"))

	return []Step{
		{"text.Set(hello brave new world)", func() { text.Set("hello brave new world") }},
		{"selection.Set(21)", func() { selection.Set(21) }},
		{"text.Set(hello)", func() { text.Set("hello") }},
		{"autosaves.Set(1)", func() { autosaves.Set(1) }},
	}
}
