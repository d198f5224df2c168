package inmemdb

import (
	"strings"

	"github.com/uzimahq/uzima/core/topic"
)

type topicRepository struct {
	topics   *topicTable
	measures *measureTable
}

var _ topic.Repository = (*topicRepository)(nil) // interface compliance check

func NewTopicRepository(db *DB) topic.Repository {
	return &topicRepository{topics: db.topic, measures: db.measure}
}

func (repo *topicRepository) queryTopics() []topic.Topic {
	topics := make([]topic.Topic, 0, len(repo.topics.table))
	for _, t := range repo.topics.table {
		topics = append(topics, *t)
	}
	return topics
}

func (repo *topicRepository) queryMeasures() []topic.Measure {
	measures := make([]topic.Measure, 0, len(repo.measures.table))
	for _, m := range repo.measures.table {
		measures = append(measures, *m)
	}
	return measures
}

// Topics

func (repo *topicRepository) CreateTopic(t topic.Topic) (topic.Topic, error) {
	repo.topics.Lock()
	defer repo.topics.Unlock()

	repo.topics.table[t.ID] = &t
	return t, nil
}

func (repo *topicRepository) QueryAllTopics() ([]topic.Topic, error) {
	repo.topics.RLock()
	defer repo.topics.RUnlock()
	return repo.queryTopics(), nil
}

func (repo *topicRepository) FilterTopics(filter topic.QueryFilter) ([]topic.Topic, error) {
	repo.topics.RLock()
	defer repo.topics.RUnlock()

	topics := repo.queryTopics()

	if filter.Search != "" {
		var filtered []topic.Topic
		search := strings.ToLower(filter.Search)
		for _, t := range topics {
			if strings.Contains(strings.ToLower(t.Title), search) ||
				strings.Contains(strings.ToLower(t.Description), search) {
				filtered = append(filtered, t)
			}
		}
		topics = filtered
	}

	if filter.DepartmentID > 0 {
		var filtered []topic.Topic
		for _, t := range topics {
			if t.DepartmentID == filter.DepartmentID {
				filtered = append(filtered, t)
			}
		}
		topics = filtered
	}

	if filter.Step != "" {
		var filtered []topic.Topic
		for _, t := range topics {
			if t.Step == filter.Step {
				filtered = append(filtered, t)
			}
		}
		topics = filtered
	}

	if filter.IsDone != nil {
		var filtered []topic.Topic
		for _, t := range topics {
			if t.Done() == *filter.IsDone {
				filtered = append(filtered, t)
			}
		}
		topics = filtered
	}

	if !filter.DueFrom.IsZero() {
		var filtered []topic.Topic
		for _, t := range topics {
			if t.DueDate.Valid && !t.DueDate.Time.Before(filter.DueFrom) {
				filtered = append(filtered, t)
			}
		}
		topics = filtered
	}
	if !filter.DueTo.IsZero() {
		var filtered []topic.Topic
		for _, t := range topics {
			if t.DueDate.Valid && !t.DueDate.Time.After(filter.DueTo) {
				filtered = append(filtered, t)
			}
		}
		topics = filtered
	}

	return topics, nil
}

func (repo *topicRepository) GetTopicByID(id string) (topic.Topic, error) {
	repo.topics.RLock()
	defer repo.topics.RUnlock()

	if t, ok := repo.topics.table[id]; ok {
		return *t, nil
	}
	return topic.Topic{}, topic.ErrTopicNotFound
}

func (repo *topicRepository) UpdateTopic(t topic.Topic) (topic.Topic, error) {
	repo.topics.Lock()
	defer repo.topics.Unlock()

	if _, ok := repo.topics.table[t.ID]; !ok {
		return topic.Topic{}, topic.ErrTopicNotFound
	}
	repo.topics.table[t.ID] = &t
	return t, nil
}

func (repo *topicRepository) DeleteTopicsByID(ids ...string) error {
	repo.topics.Lock()
	defer repo.topics.Unlock()
	repo.measures.Lock()
	defer repo.measures.Unlock()

	for _, id := range ids {
		delete(repo.topics.table, id)

		// cascade to measures
		for mid, m := range repo.measures.table {
			if m.TopicID == id {
				delete(repo.measures.table, mid)
			}
		}
	}
	return nil
}

// Measures

func (repo *topicRepository) CreateMeasure(m topic.Measure) (topic.Measure, error) {
	repo.measures.Lock()
	defer repo.measures.Unlock()

	repo.measures.table[m.ID] = &m
	return m, nil
}

func (repo *topicRepository) QueryAllMeasures() ([]topic.Measure, error) {
	repo.measures.RLock()
	defer repo.measures.RUnlock()
	return repo.queryMeasures(), nil
}

func (repo *topicRepository) QueryMeasuresByTopic(topicID string) ([]topic.Measure, error) {
	repo.measures.RLock()
	defer repo.measures.RUnlock()

	var measures []topic.Measure
	for _, m := range repo.queryMeasures() {
		if m.TopicID == topicID {
			measures = append(measures, m)
		}
	}
	return measures, nil
}

func (repo *topicRepository) GetMeasureByID(id string) (topic.Measure, error) {
	repo.measures.RLock()
	defer repo.measures.RUnlock()

	if m, ok := repo.measures.table[id]; ok {
		return *m, nil
	}
	return topic.Measure{}, topic.ErrMeasureNotFound
}

func (repo *topicRepository) UpdateMeasure(m topic.Measure) (topic.Measure, error) {
	repo.measures.Lock()
	defer repo.measures.Unlock()

	if _, ok := repo.measures.table[m.ID]; !ok {
		return topic.Measure{}, topic.ErrMeasureNotFound
	}
	repo.measures.table[m.ID] = &m
	return m, nil
}

func (repo *topicRepository) DeleteMeasure(id string) error {
	repo.measures.Lock()
	defer repo.measures.Unlock()

	delete(repo.measures.table, id)
	return nil
}
