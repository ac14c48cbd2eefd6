package version

func resetCurrent() {
	current.Store(nil)
}
