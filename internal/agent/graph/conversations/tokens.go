package conversations

import (
	"math"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"
	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	logx "github.com/noteapp-chat/server/pkg/logger"
)

// perMessageOverhead approximates the role and separator tokens of one message.
const perMessageOverhead = 4

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// TokenCounter measures text in model tokens.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts with the cl100k_base encoding.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
	mu  sync.RWMutex
}

var (
	sharedCounter TokenCounter
	counterOnce   sync.Once
)

// NewTokenCounter returns the shared tiktoken counter. When the encoding
// cannot be loaded it falls back to WordCounter.
func NewTokenCounter() TokenCounter {
	counterOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logx.Warn().Err(err).Msg("tiktoken unavailable, counting tokens by words")
			sharedCounter = WordCounter{}
			return
		}
		sharedCounter = &TiktokenCounter{enc: enc}
	})
	return sharedCounter
}

func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.enc.Encode(text, nil, nil))
}

// WordCounter approximates tokens as words / 0.75.
type WordCounter struct{}

func (WordCounter) Count(text string) int {
	return int(math.Floor(float64(len(strings.Fields(text))) / 0.75))
}

func countMessage(c TokenCounter, msg *schema.Message) int {
	if msg == nil {
		return 0
	}
	return c.Count(msg.Content) + perMessageOverhead
}

func countMessages(c TokenCounter, msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		total += countMessage(c, m)
	}
	return total
}
