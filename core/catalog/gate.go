package catalog

// Gate returns the phases a learner may see and how many topics were withheld.
// Premium learners get everything. Others only get essential topics; phases
// left without any are dropped, the others carry their own withheld count.
// phases is never modified.
func Gate(premium bool, phases []Phase) (visible []Phase, withheld int) {
	visible = make([]Phase, 0, len(phases))
	for _, p := range phases {
		if premium {
			p.Topics = append([]Topic(nil), p.Topics...)
			p.Withheld = 0
			visible = append(visible, p)
			continue
		}

		topics := make([]Topic, 0, len(p.Topics))
		for _, t := range p.Topics {
			if t.Tier == TierEssential {
				topics = append(topics, t)
			}
		}
		p.Withheld = len(p.Topics) - len(topics)
		withheld += p.Withheld
		if len(topics) == 0 {
			continue
		}
		p.Topics = topics
		visible = append(visible, p)
	}
	return visible, withheld
}
