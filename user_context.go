package unleash

import "net/url"

// UserContext identifies the caller the proxy resolves toggles for.
// It is sent with every fetch and may be replaced between polls with
// Client.SetContext.
type UserContext struct {
	UserID        string
	SessionID     string
	RemoteAddress string
	// Properties holds custom context fields.
	Properties map[string]string
}

// WithProperty returns a copy of the context with the given property set.
func (uc UserContext) WithProperty(name, value string) UserContext {
	props := make(map[string]string, len(uc.Properties)+1)
	for k, v := range uc.Properties {
		props[k] = v
	}
	props[name] = value
	uc.Properties = props
	return uc
}

// clone returns a copy that doesn't share the Properties map.
func (uc UserContext) clone() UserContext {
	if uc.Properties == nil {
		return uc
	}
	props := make(map[string]string, len(uc.Properties))
	for k, v := range uc.Properties {
		props[k] = v
	}
	uc.Properties = props
	return uc
}

// queryValues encodes the context the way the proxy expects it.
func (uc UserContext) queryValues(appName, environment string) url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("appName", appName)
	set("environment", environment)
	set("userId", uc.UserID)
	set("sessionId", uc.SessionID)
	set("remoteAddress", uc.RemoteAddress)
	for k, v := range uc.Properties {
		set("properties["+k+"]", v)
	}
	return q
}
