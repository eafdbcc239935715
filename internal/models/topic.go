package models

// Topic is one of the fixed discussion categories a post can be filed under.
type Topic string

const (
	TopicPolitics Topic = "Politics"
	TopicHealth   Topic = "Health"
	TopicSport    Topic = "Sport"
	TopicTech     Topic = "Tech"
)

// AllowedTopics keeps the order the API documents them in.
var AllowedTopics = []Topic{TopicPolitics, TopicHealth, TopicSport, TopicTech}

func (t Topic) Valid() bool {
	switch t {
	case TopicPolitics, TopicHealth, TopicSport, TopicTech:
		return true
	}
	return false
}

// ParseTopic matches the exact enumeration spelling; "tech" is not "Tech".
func ParseTopic(s string) (Topic, bool) {
	t := Topic(s)
	return t, t.Valid()
}
