package autohome

// Site selectors and scripts are kept together so layout changes only touch
// this file and the field declarations in package extract.

const (
	// Review listing sorted by publish time, newest first.
	reviewListingPath = "/%s?order=1"

	listingMarker = ".list_nice_value__hI2Bw"

	detailMarker         = ".kb-item"
	detailFallbackMarker = ".main-series"
)

// loadMoreLocators are tried in order on the ranking page.
var loadMoreLocators = []string{
	"//button[contains(text(), '加载更多')]",
	"//a[contains(text(), '加载更多')]",
	"//div[contains(text(), '加载更多')]",
	"[class*='load-more']",
	"[class*='more-btn']",
}

// nextPageLocators are tried in order on a review listing.
var nextPageLocators = []string{
	"//a[contains(@class, 'athm-page-next')]",
	"//a[@class='ace-pagination__btn next']",
	"//a[contains(text(), '下一页')]",
}

const hideWebdriverScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

const scrollToBottomScript = `window.scrollTo(0, document.body.scrollHeight)`

const scrollToMiddleScript = `window.scrollTo(0, document.body.scrollHeight / 2); window.scrollBy(0, 200)`

// revealInteractionsScript un-hides the view/like/comment counters so lazy
// widgets render their numbers before the snapshot is taken.
const revealInteractionsScript = `(function() {
	var hidden = document.querySelectorAll('div.options.fn-hide');
	hidden.forEach(function(el) {
		el.classList.remove('fn-hide');
		el.style.display = 'block';
		el.style.visibility = 'visible';
	});
	document.querySelectorAll('.option-views, .option-goods, .option-comments').forEach(function(el) {
		el.style.display = 'inline';
		el.style.visibility = 'visible';
	});
	return hidden.length;
})()`
