package lead

// Source is UTM-like attribution for where a lead came from. All fields
// are optional; unattributed leads default to direct/none.
type Source struct {
	Source   string
	Medium   string
	Campaign string
	Content  string
	Term     string
}

// normalized fills the source and medium defaults, each independently.
func (s Source) normalized() Source {
	if s.Source == "" {
		s.Source = "direct"
	}

	if s.Medium == "" {
		s.Medium = "none"
	}

	return s
}

func NewSource(source, medium, campaign string) Source {
	return Source{Source: source, Medium: medium, Campaign: campaign}.normalized()
}

func DirectSource() Source {
	return Source{}.normalized()
}
