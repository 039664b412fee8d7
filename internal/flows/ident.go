package flows

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdentityGenerator produces the fresh identity value substituted into
// a flow's designated happy-path input at run time.
type IdentityGenerator interface {
	// Fresh derives a unique value from the recorded base value.
	Fresh(base string) string
}

// UniqueIdentity derives collision-free identities from the wall clock
// plus a random fragment, so repeated runs against a live service never
// reuse a username.
type UniqueIdentity struct{}

// Fresh returns "<base>-<unix seconds>-<8 hex chars>". An empty base
// becomes "user".
func (UniqueIdentity) Fresh(base string) string {
	if base == "" {
		base = "user"
	}
	frag := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%d-%s", base, time.Now().Unix(), frag)
}
