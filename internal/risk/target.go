package risk

// Target is where the client should send the patient for a route.
func Target(r Route) string {
	switch r {
	case Emergency:
		return "tel:911"
	case Teleconsultation:
		return "/video"
	default:
		return "/chat"
	}
}

type Display struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

func DisplayFor(l Level) Display {
	d := Display{Label: string(l) + " RISK"}
	switch l {
	case Critical:
		d.Color = "red"
	case High:
		d.Color = "orange"
	case Medium:
		d.Color = "amber"
	default:
		d.Color = "emerald"
	}
	return d
}
