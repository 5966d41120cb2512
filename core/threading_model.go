package core

import "strings"

// ThreadingModel names the pools responsible for culling and drawing a window.
//
// The descriptor format is "[-]cullname[/drawname]". A leading '-' culls and
// draws together in one pass (CullSorting=false). An empty name is the app
// pool, serviced by the goroutine that calls RenderFrame. Windows naming the
// same pool share that pool's single worker.
type ThreadingModel struct {
	CullName    string
	DrawName    string
	CullSorting bool
}

// ParseThreadingModel parses a threading-model descriptor. Every string is
// accepted: when the draw name is omitted or empty, or cull sorting is off,
// drawing happens in the cull pool.
func ParseThreadingModel(model string) ThreadingModel {
	m := ThreadingModel{CullSorting: true}

	if strings.HasPrefix(model, "-") {
		m.CullSorting = false
		model = model[1:]
	}

	if cull, draw, found := strings.Cut(model, "/"); found {
		m.CullName = cull
		m.DrawName = draw
	} else {
		m.CullName = model
	}

	if !m.CullSorting || m.DrawName == "" {
		m.DrawName = m.CullName
	}
	return m
}

// String formats the model back into descriptor form.
func (m ThreadingModel) String() string {
	if !m.CullSorting {
		return "-" + m.CullName
	}
	if m.DrawName == m.CullName {
		return m.CullName
	}
	return m.CullName + "/" + m.DrawName
}

// DrawPool returns the name of the pool that draws (and therefore owns the
// graphics context of) a window using this model.
func (m ThreadingModel) DrawPool() string {
	if !m.CullSorting {
		return m.CullName
	}
	return m.DrawName
}

// IsSingleThreaded reports whether all work for the model runs in the app pool.
func (m ThreadingModel) IsSingleThreaded() bool {
	return m.CullName == "" && m.DrawName == ""
}
