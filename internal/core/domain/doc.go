// Package domain contains the core entities of the conversation index:
// conversations, messages, artifacts, topics, and the filter/result
// types shared between the services and the storage adapters.
package domain
