package main

import (
	"context"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/handmatch/config"
	"github.com/domino14/handmatch/service"
)

func testSetup(t *testing.T) {
	t.Helper()
	cfg = config.DefaultConfig()
	cfg.Set(config.ConfigTemplatePath, "../../testdata/library.json")
	var err error
	svc, err = setup(cfg)
	if err != nil {
		t.Fatal(err)
	}
}

func TestHandleRequest(t *testing.T) {
	is := is.New(t)
	testSetup(t)
	evt := service.LambdaEvent{
		AnalyzeRequest: service.AnalyzeRequest{
			RequestID: "foo",
			Hand:      []string{"3C", "3C", "3C", "6C", "6C", "6C", "6C", "J", "9C", "9C", "9C", "GD", "RD", "WD"},
			Top:       1,
		},
	}
	ret, err := HandleRequest(context.Background(), evt)
	is.NoErr(err)
	is.Equal(ret.RequestID, "foo")
	is.Equal(len(ret.Results), 1)
	is.Equal(ret.Results[0].TemplateID, "p3-k6-p6-k9")
}

func TestHandleRequestEmptyHand(t *testing.T) {
	is := is.New(t)
	testSetup(t)
	_, err := HandleRequest(context.Background(), service.LambdaEvent{})
	is.True(err != nil)
}
