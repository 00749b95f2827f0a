package webhookpubsub

import "sync"

// webhookStore keeps the registered hooks indexed by id and by action.
type webhookStore struct {
	lock          *sync.RWMutex
	hooks         map[string]*Webhook
	hooksByAction map[WebhookAction][]string
}

func newWebhookStore() *webhookStore {
	return &webhookStore{
		lock:          &sync.RWMutex{},
		hooks:         make(map[string]*Webhook),
		hooksByAction: make(map[WebhookAction][]string),
	}
}

func (s *webhookStore) add(hook *Webhook) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.hooks[hook.ID]; ok {
		return
	}
	s.hooks[hook.ID] = hook
	s.hooksByAction[hook.ActionType] = append(
		s.hooksByAction[hook.ActionType], hook.ID,
	)
}

// remove deletes the hook with the given id. Nothing is done if the hook
// does not exist.
func (s *webhookStore) remove(id string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	hook, ok := s.hooks[id]
	if !ok {
		return
	}
	delete(s.hooks, id)

	ids := s.hooksByAction[hook.ActionType]
	for i, hookID := range ids {
		if hookID == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) <= 0 {
		delete(s.hooksByAction, hook.ActionType)
		return
	}
	s.hooksByAction[hook.ActionType] = ids
}

func (s *webhookStore) getByAction(actionType WebhookAction) []*Webhook {
	s.lock.RLock()
	defer s.lock.RUnlock()

	ids := s.hooksByAction[actionType]
	hooks := make([]*Webhook, 0, len(ids))
	for _, id := range ids {
		hooks = append(hooks, s.hooks[id])
	}
	return hooks
}
