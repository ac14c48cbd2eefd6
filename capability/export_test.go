package capability

func resetBindings() {
	bindings.Clear()
}
