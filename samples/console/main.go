package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	unleash "github.com/Unleash/unleash-proxy-client-go"
)

func main() {
	client, err := unleash.NewClient(unleash.Config{
		URL:         os.Getenv("UNLEASH_PROXY_URL"),
		ClientKey:   os.Getenv("UNLEASH_CLIENT_KEY"),
		AppName:     "console-sample",
		RefreshMode: unleash.AutoPoll(5 * time.Second),
		LogLevel:    unleash.LogLevelInfo,
		// identify the caller the toggles are resolved for
		Context: unleash.UserContext{UserID: "sample-user"},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	client.AddListenerFunc(func() {
		printToggles(client.Toggles())
	})
	if err := client.Start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, err := client.AwaitReady().GetOrTimeout(10 * time.Second); err != nil {
		fmt.Fprintln(os.Stderr, "toggles not ready:", err)
	}
	fmt.Println("checkout enabled:", client.IsEnabled("checkout"))

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	<-sigc
}

func printToggles(toggles unleash.ToggleSet) {
	fmt.Println("toggles changed:")
	for _, t := range toggles.Toggles() {
		fmt.Printf("  %s: enabled=%v variant=%s\n", t.Name, t.Enabled, toggles.Variant(t.Name).Name)
	}
}
