// Package ui models the bridge's one-way channel to the UI layer.
//
// The UI is driven by named calls ({seq, func, args}) that it executes in
// order and never answers. Outbox persists every call in an eventlog so that
// transports can replay whatever a client has not acknowledged yet. Registry
// collects what plugins contribute to the page (styles, scripts, markup,
// visibility groups, menus) through typed appends that remember which plugin
// made them. Static plugin bundles ship embedded in this package.
package ui
