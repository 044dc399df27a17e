// Package estimate 定义缓存层使用的足迹估算记录（Estimate）、请求区间（Request）
// 以及时间粒度（GroupBy）。ServiceEstimates 对本包而言是不透明的 JSON 数组，
// 只有 timestamp + groupBy 会参与缓存键计算与缺口分析。
//
// 所有日期都按 UTC 日历日处理，并按粒度截断：week 以周一为起点（ISO-8601），
// quarter 以 1/4/7/10 月首日为起点。
package estimate
