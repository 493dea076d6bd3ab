package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklift/stacklift/internal/config"
)

// scriptedPrompter answers prompts from canned responses and records what
// was asked.
type scriptedPrompter struct {
	confirms []bool
	inputs   []string

	confirmCalls int
	inputCalls   int
}

func (p *scriptedPrompter) Confirm(_ context.Context, _, _ string) (bool, error) {
	if p.confirmCalls >= len(p.confirms) {
		return false, errors.New("unexpected Confirm call")
	}
	v := p.confirms[p.confirmCalls]
	p.confirmCalls++
	return v, nil
}

func (p *scriptedPrompter) Input(_ context.Context, _, _ string) (string, error) {
	if p.inputCalls >= len(p.inputs) {
		return "", errors.New("unexpected Input call")
	}
	v := p.inputs[p.inputCalls]
	p.inputCalls++
	return v, nil
}

func identity(account string) IdentityResolver {
	return func(context.Context) (string, error) { return account, nil }
}

func TestDevDeploy_AutoApproved(t *testing.T) {
	t.Parallel()
	prompter := &scriptedPrompter{}
	g := NewGate(config.EnvDev, "", prompter, identity("111111111111"))

	d, err := g.Authorize(context.Background(), ActionDeploy)

	require.NoError(t, err)
	assert.True(t, d.Granted)
	assert.Equal(t, "auto", d.Token.Mode)
	assert.Zero(t, prompter.confirmCalls, "dev deploy must not prompt")
}

func TestDevDestroy_RequiresTypedPhrase(t *testing.T) {
	t.Parallel()
	g := NewGate(config.EnvDev, "", &scriptedPrompter{inputs: []string{"destroy"}}, identity("1"))
	d, err := g.Authorize(context.Background(), ActionDestroy)
	require.NoError(t, err)
	assert.True(t, d.Granted)

	g = NewGate(config.EnvDev, "", &scriptedPrompter{inputs: []string{"nope"}}, identity("1"))
	d, err = g.Authorize(context.Background(), ActionDestroy)
	require.NoError(t, err)
	assert.False(t, d.Granted)
	assert.Contains(t, d.Reason, "phrase")
}

func TestDevDestroy_ForceNeverBypasses(t *testing.T) {
	t.Parallel()
	prompter := &scriptedPrompter{inputs: []string{"destroy"}}
	g := NewGate(config.EnvDev, "", prompter, identity("1"), WithForce(true))

	d, err := g.Authorize(context.Background(), ActionDestroy)

	require.NoError(t, err)
	assert.True(t, d.Granted)
	assert.Equal(t, 1, prompter.inputCalls, "destroy must still be typed under --force")
}

func TestStagingDeploy_ConfirmEach(t *testing.T) {
	t.Parallel()
	g := NewGate(config.EnvStaging, "", &scriptedPrompter{confirms: []bool{true}}, identity("1"))
	d, err := g.Authorize(context.Background(), ActionDeploy)
	require.NoError(t, err)
	assert.True(t, d.Granted)
	assert.Equal(t, "interactive", d.Token.Mode)

	g = NewGate(config.EnvStaging, "", &scriptedPrompter{confirms: []bool{false}}, identity("1"))
	d, err = g.Authorize(context.Background(), ActionDeploy)
	require.NoError(t, err)
	assert.False(t, d.Granted)
}

func TestStagingDeploy_ForceSkipsConfirmation(t *testing.T) {
	t.Parallel()
	prompter := &scriptedPrompter{}
	g := NewGate(config.EnvStaging, "", prompter, identity("1"), WithForce(true))

	d, err := g.Authorize(context.Background(), ActionDeploy)

	require.NoError(t, err)
	assert.True(t, d.Granted)
	assert.Equal(t, "forced", d.Token.Mode)
	assert.Zero(t, prompter.confirmCalls)
}

func TestStagingDestroy_PhraseNamesEnvironment(t *testing.T) {
	t.Parallel()
	// "destroy" alone must not be enough in staging.
	g := NewGate(config.EnvStaging, "", &scriptedPrompter{confirms: []bool{true}, inputs: []string{"destroy"}}, identity("1"))
	d, err := g.Authorize(context.Background(), ActionDestroy)
	require.NoError(t, err)
	assert.False(t, d.Granted)

	g = NewGate(config.EnvStaging, "", &scriptedPrompter{confirms: []bool{true}, inputs: []string{"destroy staging"}}, identity("1"))
	d, err = g.Authorize(context.Background(), ActionDestroy)
	require.NoError(t, err)
	assert.True(t, d.Granted)
}

func TestProdDeploy_IdentityMismatchDeniesWithoutPrompting(t *testing.T) {
	t.Parallel()
	prompter := &scriptedPrompter{}
	g := NewGate(config.EnvProd, "111111111111", prompter, identity("222222222222"))

	d, err := g.Authorize(context.Background(), ActionDeploy)

	require.NoError(t, err)
	assert.False(t, d.Granted)
	assert.Contains(t, d.Reason, "does not match expected")
	assert.Zero(t, prompter.confirmCalls)
	assert.Zero(t, prompter.inputCalls)
}

func TestProdDeploy_FullCeremony(t *testing.T) {
	t.Parallel()
	prompter := &scriptedPrompter{
		confirms: []bool{true, true}, // identity affirmation, confirm-each
		inputs:   []string{"deploy to production"},
	}
	g := NewGate(config.EnvProd, "111111111111", prompter, identity("111111111111"))

	d, err := g.Authorize(context.Background(), ActionDeploy)

	require.NoError(t, err)
	assert.True(t, d.Granted)
	assert.Equal(t, 2, prompter.confirmCalls)
	assert.Equal(t, 1, prompter.inputCalls)
}

func TestProdDeploy_ForceDoesNotBypass(t *testing.T) {
	t.Parallel()
	prompter := &scriptedPrompter{
		confirms: []bool{true, true},
		inputs:   []string{"deploy to production"},
	}
	g := NewGate(config.EnvProd, "111111111111", prompter, identity("111111111111"), WithForce(true))

	d, err := g.Authorize(context.Background(), ActionDeploy)

	require.NoError(t, err)
	assert.True(t, d.Granted)
	assert.Equal(t, 1, prompter.inputCalls, "prod must still require the typed phrase under --force")
}

func TestProdDestroy_TypesAccountAndCountsDown(t *testing.T) {
	t.Parallel()
	var slept time.Duration
	prompter := &scriptedPrompter{
		confirms: []bool{true, true},
		inputs:   []string{"111111111111", "destroy production"},
	}
	g := NewGate(config.EnvProd, "111111111111", prompter, identity("111111111111"),
		WithSleep(func(d time.Duration) { slept += d }))

	d, err := g.Authorize(context.Background(), ActionDestroy)

	require.NoError(t, err)
	assert.True(t, d.Granted)
	assert.Equal(t, 10*time.Second, slept)
}

func TestProdDestroy_WrongTypedAccountDenied(t *testing.T) {
	t.Parallel()
	prompter := &scriptedPrompter{
		confirms: []bool{true},
		inputs:   []string{"999999999999"},
	}
	g := NewGate(config.EnvProd, "111111111111", prompter, identity("111111111111"),
		WithSleep(func(time.Duration) {}))

	d, err := g.Authorize(context.Background(), ActionDestroy)

	require.NoError(t, err)
	assert.False(t, d.Granted)
	assert.Contains(t, d.Reason, "typed account identifier")
}

func TestAuthorize_TokenCachedPerAction(t *testing.T) {
	t.Parallel()
	prompter := &scriptedPrompter{confirms: []bool{true}}
	g := NewGate(config.EnvStaging, "", prompter, identity("1"))

	first, err := g.Authorize(context.Background(), ActionDeploy)
	require.NoError(t, err)
	second, err := g.Authorize(context.Background(), ActionDeploy)
	require.NoError(t, err)

	assert.True(t, second.Granted)
	assert.Same(t, first.Token, second.Token)
	assert.Equal(t, 1, prompter.confirmCalls, "re-authorizing the same action must not re-prompt")
}

func TestAuthorize_PhraseTrimsWhitespace(t *testing.T) {
	t.Parallel()
	g := NewGate(config.EnvDev, "", &scriptedPrompter{inputs: []string{"  destroy  "}}, identity("1"))
	d, err := g.Authorize(context.Background(), ActionDestroy)
	require.NoError(t, err)
	assert.True(t, d.Granted)
}

func TestAuthorize_PromptErrorSurfaces(t *testing.T) {
	t.Parallel()
	g := NewGate(config.EnvStaging, "", &scriptedPrompter{}, identity("1"))

	_, err := g.Authorize(context.Background(), ActionDeploy)

	require.Error(t, err)
}

func TestPolicyFor_Table(t *testing.T) {
	t.Parallel()
	dev := PolicyFor(config.EnvDev)
	assert.True(t, dev.AutoApprove)
	assert.True(t, dev.ForceBypass)
	assert.Zero(t, dev.DestroyCountdown)

	prod := PolicyFor(config.EnvProd)
	assert.False(t, prod.AutoApprove)
	assert.False(t, prod.ForceBypass)
	assert.True(t, prod.IdentityCheck)
	assert.True(t, prod.DestroyConfirmsAccount)
	assert.Len(t, prod.Phrases, 3)
}
