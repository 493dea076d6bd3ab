package approval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stacklift/stacklift/internal/config"
)

// Token is an in-memory proof that a mutating action was authorized for the
// current run. It is never persisted across runs.
type Token struct {
	Environment config.Environment
	Action      Action
	Mode        string // "auto", "interactive", or "forced"
	GrantedAt   time.Time
}

// Decision is the outcome of an authorization request.
type Decision struct {
	Granted bool
	Token   *Token
	Reason  string
}

func granted(env config.Environment, action Action, mode string) Decision {
	return Decision{
		Granted: true,
		Token:   &Token{Environment: env, Action: action, Mode: mode, GrantedAt: time.Now()},
	}
}

func denied(format string, v ...interface{}) Decision {
	return Decision{Reason: fmt.Sprintf(format, v...)}
}

// Prompter asks the operator for confirmation. Tests inject a scripted
// implementation; the CLI uses the huh-backed one.
type Prompter interface {
	Confirm(ctx context.Context, title, description string) (bool, error)
	Input(ctx context.Context, title, description string) (string, error)
}

// IdentityResolver returns the account identifier the run operates against.
type IdentityResolver func(ctx context.Context) (string, error)

// Gate authorizes mutating actions for one run. Authorization is idempotent
// within the run: the first grant for an action kind is cached and reused
// for retries of that action.
type Gate struct {
	env             config.Environment
	policy          Policy
	prompter        Prompter
	resolveIdentity IdentityResolver
	expectedAccount string
	force           bool

	sleep  func(time.Duration)
	tokens map[Action]*Token
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithForce marks the run as --force/--auto-approve. Force never applies to
// destroy and never to prod.
func WithForce(force bool) GateOption {
	return func(g *Gate) { g.force = force }
}

// WithSleep replaces the countdown sleeper (used in tests).
func WithSleep(fn func(time.Duration)) GateOption {
	return func(g *Gate) { g.sleep = fn }
}

// NewGate creates the approval gate for one run.
func NewGate(env config.Environment, expectedAccount string, prompter Prompter, resolve IdentityResolver, opts ...GateOption) *Gate {
	g := &Gate{
		env:             env,
		policy:          PolicyFor(env),
		prompter:        prompter,
		resolveIdentity: resolve,
		expectedAccount: expectedAccount,
		sleep:           time.Sleep,
		tokens:          make(map[Action]*Token),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize decides whether the action may proceed. The returned error is
// only for prompt I/O failures; a policy refusal is a Decision with
// Granted == false.
func (g *Gate) Authorize(ctx context.Context, action Action) (Decision, error) {
	if token, ok := g.tokens[action]; ok {
		return Decision{Granted: true, Token: token}, nil
	}

	decision, err := g.authorize(ctx, action)
	if err != nil {
		return Decision{}, err
	}
	if decision.Granted {
		g.tokens[action] = decision.Token
	}
	return decision, nil
}

func (g *Gate) authorize(ctx context.Context, action Action) (Decision, error) {
	phrase, needsPhrase := g.policy.Phrases[action]

	// Identity cross-check comes first: on a mismatched account nothing
	// else is worth asking.
	if g.policy.IdentityCheck {
		account, err := g.resolveIdentity(ctx)
		if err != nil {
			return Decision{}, fmt.Errorf("failed to resolve account identity: %w", err)
		}
		if g.expectedAccount != "" && account != g.expectedAccount {
			return denied("account %s does not match expected %s", account, g.expectedAccount), nil
		}
		ok, err := g.prompter.Confirm(ctx,
			fmt.Sprintf("Account check for %s", g.env),
			fmt.Sprintf("You are operating against account %s. Is that the intended account?", account))
		if err != nil {
			return Decision{}, err
		}
		if !ok {
			return denied("account identity not affirmed"), nil
		}

		if action == ActionDestroy && g.policy.DestroyConfirmsAccount {
			typed, err := g.prompter.Input(ctx,
				"Confirm account identifier",
				fmt.Sprintf("Type the account identifier (%s) to confirm the destroy target", account))
			if err != nil {
				return Decision{}, err
			}
			if strings.TrimSpace(typed) != account {
				return denied("typed account identifier does not match %s", account), nil
			}
		}
	}

	// Force bypasses interactive prompts for non-destroy actions where the
	// tier allows it.
	if g.force && g.policy.ForceBypass && action != ActionDestroy {
		return granted(g.env, action, "forced"), nil
	}

	if g.policy.AutoApprove && !needsPhrase {
		return granted(g.env, action, "auto"), nil
	}

	if g.policy.ConfirmEach {
		ok, err := g.prompter.Confirm(ctx,
			fmt.Sprintf("%s %s?", strings.ToUpper(string(action)[:1])+string(action)[1:], g.env),
			fmt.Sprintf("Proceed with %s in %s?", action, g.env))
		if err != nil {
			return Decision{}, err
		}
		if !ok {
			return denied("%s not confirmed", action), nil
		}
	}

	if needsPhrase {
		typed, err := g.prompter.Input(ctx,
			fmt.Sprintf("Type %q to continue", phrase),
			fmt.Sprintf("%s in %s requires a typed confirmation", action, g.env))
		if err != nil {
			return Decision{}, err
		}
		if strings.TrimSpace(typed) != phrase {
			return denied("confirmation phrase did not match"), nil
		}
	}

	if action == ActionDestroy && g.policy.DestroyCountdown > 0 {
		g.countdown(g.policy.DestroyCountdown)
	}

	return granted(g.env, action, "interactive"), nil
}

// countdown gives the operator a last chance to interrupt before a destroy.
func (g *Gate) countdown(d time.Duration) {
	for remaining := d; remaining > 0; remaining -= time.Second {
		fmt.Printf("\rdestroying in %v... (Ctrl-C to abort)", remaining)
		g.sleep(time.Second)
	}
	fmt.Println()
}
