package unleash

type pollingModeVisitor interface {
	visitAutoPoll(config autoPollConfig) refreshPolicy
	visitManualPoll(config manualPollConfig) refreshPolicy
}

type refreshPolicyFactory struct {
	refresher *toggleRefresher
	hooks     *Hooks
}

func newRefreshPolicyFactory(refresher *toggleRefresher, hooks *Hooks) *refreshPolicyFactory {
	return &refreshPolicyFactory{refresher: refresher, hooks: hooks}
}

func (factory *refreshPolicyFactory) visitAutoPoll(config autoPollConfig) refreshPolicy {
	return newAutoPollingPolicy(factory.refresher, config, factory.onReady())
}

func (factory *refreshPolicyFactory) visitManualPoll(config manualPollConfig) refreshPolicy {
	return newManualPollingPolicy(factory.refresher, factory.onReady())
}

func (factory *refreshPolicyFactory) onReady() func() {
	if factory.hooks == nil {
		return nil
	}
	return factory.hooks.OnReady
}
