package operation

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hay-kot/abacus/internal/core/calcerr"
)

// Constructor builds a fresh Operation for each lookup.
type Constructor func() Operation

// Factory is a registry of operator tokens. Operations can be registered at
// runtime without changing the factory itself. Tokens are case-insensitive.
type Factory struct {
	mu       sync.RWMutex
	creators map[string]Constructor
	revision uint64
}

// NewFactory returns a Factory with the built-in operations registered:
// + - * / % pow div abs root per.
func NewFactory() *Factory {
	f := &Factory{creators: make(map[string]Constructor)}

	_ = f.Register("+", func() Operation { return Addition{} })
	_ = f.Register("-", func() Operation { return Subtraction{} })
	_ = f.Register("*", func() Operation { return Multiplication{} })
	_ = f.Register("/", func() Operation { return Division{} })
	_ = f.Register("%", func() Operation { return Modulus{} })
	_ = f.Register("pow", func() Operation { return Power{} })
	_ = f.Register("div", func() Operation { return IntegerDivision{} })
	_ = f.Register("abs", func() Operation { return AbsoluteDifference{} })
	_ = f.Register("root", func() Operation { return Root{} })
	_ = f.Register("per", func() Operation { return Percentage{} })

	return f
}

// Register adds or replaces the operation for token. The constructor must
// produce a non-nil Operation.
func (f *Factory) Register(token string, ctor Constructor) error {
	token = normalize(token)
	if token == "" {
		return fmt.Errorf("operation token cannot be empty")
	}
	if ctor == nil {
		return fmt.Errorf("operation %q: constructor is nil", token)
	}
	if ctor() == nil {
		return fmt.Errorf("operation %q: constructor does not produce an Operation", token)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[token] = ctor
	f.revision++
	return nil
}

// Create returns a new Operation for token, or an
// *calcerr.UnknownOperationError if the token is not registered.
func (f *Factory) Create(token string) (Operation, error) {
	f.mu.RLock()
	ctor, ok := f.creators[normalize(token)]
	f.mu.RUnlock()

	if !ok {
		return nil, &calcerr.UnknownOperationError{Token: token}
	}
	return ctor(), nil
}

// Tokens returns the registered tokens in sorted order.
func (f *Factory) Tokens() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	tokens := make([]string, 0, len(f.creators))
	for token := range f.creators {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// Revision changes every time an operation is registered. Callers that
// cache the token set compare revisions to know when to rebuild.
func (f *Factory) Revision() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.revision
}

func normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
