package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// 抓取运行中引擎的 /metrics，按前缀打印当前值，用于验证 Prometheus 暴露是否正常。
func main() {
	url := flag.String("url", "http://localhost:9100/metrics", "metrics endpoint")
	prefix := flag.String("prefix", "mm_", "only print metric families with this prefix")
	interval := flag.Duration("interval", 0, "repeat every interval (0 = once)")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	for {
		if err := probe(client, *url, *prefix); err != nil {
			log.Printf("probe failed: %v", err)
			if *interval <= 0 {
				os.Exit(1)
			}
		}
		if *interval <= 0 {
			return
		}
		time.Sleep(*interval)
	}
}

func probe(client *http.Client, url, prefix string) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %s", url, resp.Status)
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return fmt.Errorf("parse metrics: %w", err)
	}

	names := make([]string, 0, len(families))
	for name := range families {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	fmt.Printf("== %s (%d families)\n", time.Now().Format(time.RFC3339), len(names))
	for _, name := range names {
		for _, m := range families[name].GetMetric() {
			fmt.Printf("%s%s %g\n", name, labels(m), value(m))
		}
	}
	return nil
}

func labels(m *dto.Metric) string {
	if len(m.GetLabel()) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		parts = append(parts, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func value(m *dto.Metric) float64 {
	switch {
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	case m.GetUntyped() != nil:
		return m.GetUntyped().GetValue()
	}
	return 0
}
