package kafka

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWriterReusesWriterPerTopic(t *testing.T) {
	p := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}})

	first := p.getWriter(TopicOptionLifecycle)
	second := p.getWriter(TopicOptionLifecycle)
	other := p.getWriter(TopicPriceTicks)

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
	assert.Equal(t, TopicOptionLifecycle, first.Topic)
}

func TestGetWriterConcurrent(t *testing.T) {
	p := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}})

	const callers = 32
	writers := make(chan interface{}, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			topic := TopicOptionLifecycle
			if i%2 == 0 {
				topic = TopicPriceTicks
			}
			writers <- p.getWriter(topic)
		}(i)
	}
	wg.Wait()
	close(writers)

	// Every caller must see one of the two shared writer instances.
	lifecycle := p.getWriter(TopicOptionLifecycle)
	ticks := p.getWriter(TopicPriceTicks)
	require.Len(t, p.writers, 2)

	for w := range writers {
		assert.True(t, w == lifecycle || w == ticks)
	}
}
