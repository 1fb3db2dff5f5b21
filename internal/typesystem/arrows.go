package typesystem

// CachedResult returns the result recorded for an argument tuple equal to from.
func (u *Universe) CachedResult(f *Func, from *Tuple) (Type, bool) {
	if f.cache == nil {
		return nil, false
	}
	for _, a := range f.cache.arrows {
		if u.Equal(a.From, from) {
			return a.To, true
		}
	}
	return nil, false
}

// AddArrow records from -> to, joining with an existing arrow for an equal tuple.
func (u *Universe) AddArrow(f *Func, from *Tuple, to Type) {
	if f.cache == nil {
		f.cache = &arrowCache{}
	}
	for i, a := range f.cache.arrows {
		if u.Equal(a.From, from) {
			f.cache.arrows[i].To = u.Union(a.To, to)
			return
		}
	}
	f.cache.arrows = append(f.cache.arrows, Arrow{From: from, To: to})
}

// ReturnType is the union of every recorded result, or Unknown before any call.
func (u *Universe) ReturnType(f *Func) Type {
	if f.Def == nil && f.Native == nil && f.Returns != nil && len(f.Arrows()) == 0 {
		return f.Returns
	}
	var out []Type
	for _, a := range f.Arrows() {
		out = append(out, a.To)
	}
	return u.UnionAll(out...)
}
